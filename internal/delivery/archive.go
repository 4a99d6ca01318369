package delivery

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"time"
)

// ArchiveFileName is the download name suggested for a zip deliverable.
func ArchiveFileName(root, projectID string) string {
	if projectID == "" {
		return root + ".zip"
	}
	return fmt.Sprintf("%s_%s.zip", root, projectID)
}

type archiveEntry struct {
	name   string
	data   []byte
	method uint16
}

// BuildArchive writes the fixed package layout into an in-memory zip:
// <root>/INDEX_D.XML, <root>/PHOTO.XML and one file per mapping under the
// photo folder. payloads is keyed by photo id and must cover every mapping.
func BuildArchive(root string, desc *Descriptors, mappings []FileMapping, payloads map[string][]byte, modified time.Time) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	indexBytes, _, err := EncodeShiftJIS(desc.IndexXML)
	if err != nil {
		return nil, err
	}
	photoBytes, _, err := EncodeShiftJIS(desc.PhotoXML)
	if err != nil {
		return nil, err
	}

	entries := []archiveEntry{
		{path.Join(root, IndexFileName), indexBytes, zip.Deflate},
		{path.Join(root, PhotoFileName), photoBytes, zip.Deflate},
	}
	for _, m := range mappings {
		data, ok := payloads[m.PhotoID]
		if !ok {
			return nil, fmt.Errorf("no payload for photo %s", m.PhotoID)
		}
		entries = append(entries, archiveEntry{m.Path(), data, zip.Store})
	}

	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method, Modified: modified})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
