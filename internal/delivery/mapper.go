package delivery

import (
	"fmt"
	"path"
	"strings"
	"unicode"
)

const (
	MaxFolderNameRunes  = 64
	maxCategorySequence = 99999
)

const illegalFolderChars = `\/:*?"<>|`

// RootFolderName derives the package root folder from the construction name.
// truncated reports whether the name was cut to MaxFolderNameRunes.
func RootFolderName(constructionName string) (name string, truncated bool, err error) {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(constructionName) {
		switch {
		case unicode.IsControl(r), strings.ContainsRune(illegalFolderChars, r):
			continue
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	name = strings.TrimRight(b.String(), ". ")

	runes := []rune(name)
	if len(runes) > MaxFolderNameRunes {
		name = strings.TrimRight(string(runes[:MaxFolderNameRunes]), ". _")
		truncated = true
	}
	if name == "" {
		return "", false, newValidationError(CodeInvalidFolderName, "constructionName",
			"construction name %q has no characters usable in a folder name", constructionName)
	}
	return name, truncated, nil
}

// MapFiles assigns delivery filenames in selection order. The name is a pure
// function of the category code and the running counter within that category.
func MapFiles(root string, std Standard, photos []Photo) ([]FileMapping, error) {
	folder := path.Join(root, std.PhotoFolder)
	counters := make(map[string]int, len(categories))
	mappings := make([]FileMapping, 0, len(photos))
	for i, p := range photos {
		counters[p.Category.Code]++
		seq := counters[p.Category.Code]
		if seq > maxCategorySequence {
			return nil, newValidationError(CodeInvalidDeliveryFilename, "photos",
				"category %s has more than %d photos", p.Category.Label, maxCategorySequence)
		}
		mappings = append(mappings, FileMapping{
			PhotoID:          p.Source.ID,
			OriginalFileName: p.Source.FileName,
			DeliveryFileName: fmt.Sprintf("P%s%05d%s", p.Category.Code, seq, deliveryExtension(p.Source.FileName)),
			FolderPath:       folder,
			SerialNumber:     i + 1,
		})
	}
	return mappings, nil
}

func deliveryExtension(fileName string) string {
	ext := strings.ToUpper(path.Ext(fileName))
	switch ext {
	case "", ".", ".JPEG", ".JPG":
		return ".JPG"
	case ".TIFF":
		return ".TIF"
	}
	return ext
}

// NewFolderStructure describes the package layout for a mapping.
func NewFolderStructure(root string, std Standard, mappings []FileMapping) FolderStructure {
	files := make([]string, 0, len(mappings))
	for _, m := range mappings {
		files = append(files, m.Path())
	}
	return FolderStructure{
		RootFolder:   root,
		IndexFile:    path.Join(root, IndexFileName),
		PhotoXMLFile: path.Join(root, PhotoFileName),
		PhotoFolder:  path.Join(root, std.PhotoFolder),
		PhotoFiles:   files,
	}
}
