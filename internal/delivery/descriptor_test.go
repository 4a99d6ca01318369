package delivery

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, meta ExportMetadata, cfg ExportConfig, photos []ProjectPhoto) (*Request, []FileMapping, *Descriptors) {
	t.Helper()
	req, err := Normalize(meta, cfg, photos)
	require.NoError(t, err)
	mappings, err := MapFiles("ROOT", req.Standard, req.Photos)
	require.NoError(t, err)
	desc, err := GenerateDescriptors(req, mappings)
	require.NoError(t, err)
	return req, mappings, desc
}

func TestPhotoXML_ReferencesEveryMapping(t *testing.T) {
	_, mappings, desc := generate(t, sampleMetadata(), ExportConfig{}, mixedPhotos(30))

	refs, err := parseDescriptor([]byte(desc.PhotoXML), false)
	require.NoError(t, err)
	assert.Equal(t, photoRootName, refs.Root)

	want := make([]string, 0, len(mappings))
	for _, m := range mappings {
		want = append(want, m.DeliveryFileName)
	}
	got := append([]string(nil), refs.Files...)
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func TestIndexXML_CountAndFiles(t *testing.T) {
	_, mappings, desc := generate(t, sampleMetadata(), ExportConfig{}, samplePhotos())

	refs, err := parseDescriptor([]byte(desc.IndexXML), false)
	require.NoError(t, err)
	assert.Equal(t, indexRootName, refs.Root)
	assert.Equal(t, "3", refs.PhotoCount)
	require.Len(t, refs.Files, len(mappings))
	for i, m := range mappings {
		assert.Equal(t, m.DeliveryFileName, refs.Files[i])
	}
}

func TestDescriptors_EscapeFreeText(t *testing.T) {
	meta := ExportMetadata{
		ConstructionName: `Bridge "A" & <Ramp>`,
		ContractorName:   "Acme's",
		OrdererName:      "国土交通省 <関東>",
	}
	photos := []ProjectPhoto{{ID: "x", FileName: "x.jpg", Category: "other", ShootingDate: "2023-01-01", Title: `A&B <"x">`}}
	_, _, desc := generate(t, meta, ExportConfig{}, photos)

	assert.Contains(t, desc.PhotoXML, "<写真タイトル>A&amp;B &lt;&#34;x&#34;&gt;</写真タイトル>")
	assert.Contains(t, desc.IndexXML, "<工事名称>Bridge &#34;A&#34; &amp; &lt;Ramp&gt;</工事名称>")
	assert.Contains(t, desc.IndexXML, "<受注者名>Acme&#39;s</受注者名>")
	assert.Contains(t, desc.IndexXML, "<発注者機関事務所名>国土交通省 &lt;関東&gt;</発注者機関事務所名>")

	_, err := parseDescriptor([]byte(desc.PhotoXML), false)
	assert.NoError(t, err)
	_, err = parseDescriptor([]byte(desc.IndexXML), false)
	assert.NoError(t, err)
}

func TestDescriptors_Header(t *testing.T) {
	_, _, desc := generate(t, sampleMetadata(), ExportConfig{}, samplePhotos())
	assert.True(t, strings.HasPrefix(desc.PhotoXML, `<?xml version="1.0" encoding="Shift_JIS"?>`))
	assert.Contains(t, desc.PhotoXML, `<!DOCTYPE photodata SYSTEM "PHOTO05.DTD">`)
	assert.Contains(t, desc.PhotoXML, `<photodata DTD_version="05">`)
	assert.Contains(t, desc.IndexXML, `<!DOCTYPE constdata SYSTEM "INDE_D05.DTD">`)
	assert.Contains(t, desc.IndexXML, "<写真管理ファイル名>PHOTO.XML</写真管理ファイル名>")
	assert.Contains(t, desc.IndexXML, "<適用要領基準>土木202303-01</適用要領基準>")
}

func TestDescriptors_StandardVariants(t *testing.T) {
	t.Run("R05 carries major class and software tag", func(t *testing.T) {
		_, _, desc := generate(t, sampleMetadata(), ExportConfig{StandardVersion: string(StandardR05)}, samplePhotos())
		assert.Contains(t, desc.PhotoXML, "<写真-大分類>工事</写真-大分類>")
		assert.Contains(t, desc.PhotoXML, "<ソフトメーカ用TAG>")
	})

	t.Run("R04 uses its own code", func(t *testing.T) {
		_, _, desc := generate(t, sampleMetadata(), ExportConfig{StandardVersion: string(StandardR04)}, samplePhotos())
		assert.Contains(t, desc.PhotoXML, "<適用要領基準>土木202203-01</適用要領基準>")
	})

	t.Run("H28 uses DTD 04 without major class", func(t *testing.T) {
		_, _, desc := generate(t, sampleMetadata(), ExportConfig{StandardVersion: string(StandardH28)}, samplePhotos())
		assert.Contains(t, desc.PhotoXML, `<photodata DTD_version="04">`)
		assert.Contains(t, desc.IndexXML, `<!DOCTYPE constdata SYSTEM "INDE_D04.DTD">`)
		assert.NotContains(t, desc.PhotoXML, "写真-大分類")
		assert.NotContains(t, desc.PhotoXML, "ソフトメーカ用TAG")
	})
}

func TestPhotoXML_TitleFallback(t *testing.T) {
	photos := []ProjectPhoto{{ID: "x", FileName: "現場全景.jpg", Category: "before_after", ShootingDate: "2023-01-01"}}
	_, _, desc := generate(t, sampleMetadata(), ExportConfig{}, photos)
	assert.Contains(t, desc.PhotoXML, "<写真タイトル>現場全景</写真タイトル>")
	assert.Contains(t, desc.PhotoXML, "<写真区分>着手前及び完成写真</写真区分>")
	assert.Contains(t, desc.PhotoXML, "<撮影年月日>2023-01-01</撮影年月日>")
}

func TestGeneratePhotoXML_MisalignedInput(t *testing.T) {
	_, err := GeneratePhotoXML(standards[LatestStandard], []Photo{{}}, nil)
	assert.Error(t, err)
}

func TestEncodeShiftJIS(t *testing.T) {
	b, bad, err := EncodeShiftJIS("工事名称")
	require.NoError(t, err)
	assert.Empty(t, bad)
	assert.Len(t, b, 8)

	b, bad, err = EncodeShiftJIS("橋梁🌉補修")
	require.NoError(t, err)
	assert.Equal(t, []rune{'🌉'}, bad)
	assert.Contains(t, string(b), "?")
}
