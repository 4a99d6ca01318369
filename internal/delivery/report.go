package delivery

import (
	"fmt"
	"strings"
	"time"
)

type ReportItem struct {
	Severity    string `json:"severity"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	TargetFile  string `json:"targetFile,omitempty"`
	TargetField string `json:"targetField,omitempty"`
}

// ValidationReport is the structured summary shown next to the preview.
type ValidationReport struct {
	ConstructionName string       `json:"constructionName"`
	StandardVersion  string       `json:"standardVersion"`
	OutputFormat     string       `json:"outputFormat"`
	PhotoCount       int          `json:"photoCount"`
	ErrorCount       int          `json:"errorCount"`
	WarningCount     int          `json:"warningCount"`
	IsValid          bool         `json:"isValid"`
	Items            []ReportItem `json:"items"`
	GeneratedAt      time.Time    `json:"generatedAt"`
}

const (
	severityError   = "error"
	severityWarning = "warning"
)

// BuildReport summarises a validation run. It copies IsValid from the result
// and never evaluates rules of its own.
func BuildReport(result ValidationResult, req *Request, mappings []FileMapping) ValidationReport {
	items := make([]ReportItem, 0, len(result.Errors)+len(result.Warnings))
	for _, e := range result.Errors {
		items = append(items, reportItem(severityError, e))
	}
	for _, w := range result.Warnings {
		items = append(items, reportItem(severityWarning, w))
	}
	return ValidationReport{
		ConstructionName: req.Metadata.ConstructionName,
		StandardVersion:  string(req.Standard.Version),
		OutputFormat:     string(req.Format),
		PhotoCount:       len(mappings),
		ErrorCount:       len(result.Errors),
		WarningCount:     len(result.Warnings),
		IsValid:          result.IsValid,
		Items:            items,
		GeneratedAt:      result.ValidatedAt,
	}
}

func reportItem(severity string, i Issue) ReportItem {
	return ReportItem{
		Severity:    severity,
		Code:        i.Code,
		Message:     i.Message,
		TargetFile:  i.TargetFile,
		TargetField: i.TargetField,
	}
}

// RenderReportText renders the plain-text delivery report.
func RenderReportText(result ValidationResult, req *Request, mappings []FileMapping) string {
	var b strings.Builder
	m := req.Metadata

	b.WriteString("電子納品 検証レポート\n")
	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "工事名称: %s\n", m.ConstructionName)
	fmt.Fprintf(&b, "受注者名: %s\n", m.ContractorName)
	fmt.Fprintf(&b, "発注者名: %s\n", orUnset(m.OrdererName))
	fmt.Fprintf(&b, "工期: %s 〜 %s\n", orUnset(m.StartDate.String()), orUnset(m.EndDate.String()))
	fmt.Fprintf(&b, "適用基準: %s (%s)\n", req.Standard.Version, req.Standard.Code)
	fmt.Fprintf(&b, "出力形式: %s\n", req.Format)
	fmt.Fprintf(&b, "写真枚数: %d\n", len(mappings))
	fmt.Fprintf(&b, "検証日時: %s\n", result.ValidatedAt.Format(time.RFC3339))
	if result.IsValid {
		b.WriteString("判定: 納品可能\n")
	} else {
		b.WriteString("判定: エラーあり (納品不可)\n")
	}

	writeIssues(&b, "エラー", result.Errors)
	writeIssues(&b, "警告", result.Warnings)

	b.WriteString("\n写真ファイル対応表\n")
	if len(mappings) == 0 {
		b.WriteString("  なし\n")
	}
	for _, fm := range mappings {
		fmt.Fprintf(&b, "  %s <- %s\n", fm.Path(), fm.OriginalFileName)
	}
	return b.String()
}

func writeIssues(b *strings.Builder, heading string, issues []Issue) {
	fmt.Fprintf(b, "\n%s (%d件)\n", heading, len(issues))
	if len(issues) == 0 {
		b.WriteString("  なし\n")
		return
	}
	for _, i := range issues {
		fmt.Fprintf(b, "  [%s] %s", i.Code, i.Message)
		if i.TargetFile != "" {
			fmt.Fprintf(b, " (%s)", i.TargetFile)
		}
		b.WriteByte('\n')
	}
}

func orUnset(s string) string {
	if s == "" {
		return "(未設定)"
	}
	return s
}
