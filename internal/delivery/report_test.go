package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReport(t *testing.T) {
	req, mappings, _ := generate(t, sampleMetadata(), ExportConfig{}, samplePhotos())
	result := NewValidationResult(
		[]Issue{{Code: CodeInvalidDateRange, Message: "bad range"}},
		[]Issue{{Code: CodeMissingOrdererName, Message: "no orderer"}, {Code: CodeMissingPhotoTitle, Message: "no title", TargetFile: "a.jpg"}},
		fixedNow,
	)

	report := BuildReport(result, req, mappings)
	assert.False(t, report.IsValid)
	assert.Equal(t, 1, report.ErrorCount)
	assert.Equal(t, 2, report.WarningCount)
	assert.Equal(t, 3, report.PhotoCount)
	assert.Equal(t, "令和5年3月", report.StandardVersion)
	assert.Len(t, report.Items, 3)
	assert.Equal(t, "error", report.Items[0].Severity)
	assert.Equal(t, "warning", report.Items[2].Severity)
	assert.Equal(t, "a.jpg", report.Items[2].TargetFile)
	assert.Equal(t, fixedNow, report.GeneratedAt)
}

func TestRenderReportText(t *testing.T) {
	meta := sampleMetadata()
	meta.ConstructionStartDate = "2023-04-01"
	req, mappings, _ := generate(t, meta, ExportConfig{}, samplePhotos())
	result := NewValidationResult(nil, []Issue{{Code: CodeMissingOrdererName, Message: "発注者名が未入力です"}}, fixedNow)

	text := RenderReportText(result, req, mappings)
	assert.Contains(t, text, "工事名称: Bridge A")
	assert.Contains(t, text, "発注者名: (未設定)")
	assert.Contains(t, text, "工期: 2023-04-01 〜 (未設定)")
	assert.Contains(t, text, "適用基準: 令和5年3月 (土木202303-01)")
	assert.Contains(t, text, "写真枚数: 3")
	assert.Contains(t, text, "検証日時: 2026-10-17T09:00:00Z")
	assert.Contains(t, text, "判定: 納品可能")
	assert.Contains(t, text, "エラー (0件)\n  なし")
	assert.Contains(t, text, "警告 (1件)\n  [MISSING_ORDERER_NAME] 発注者名が未入力です")
	assert.Contains(t, text, "ROOT/PIC/P0200001.JPG <- IMG_0001.jpg")
}
