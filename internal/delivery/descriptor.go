package delivery

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/japanese"
)

const (
	PhotoFileName = "PHOTO.XML"
	IndexFileName = "INDEX_D.XML"

	softwareName  = "kouji-photo-backend"
	mediaNumber   = "1"
	xmlEncoding   = "Shift_JIS"
	photoRootName = "photodata"
	indexRootName = "constdata"
)

// Descriptors holds the generated XML as UTF-8 text. The declared encoding is
// Shift_JIS; EncodeShiftJIS produces the bytes written into an archive.
type Descriptors struct {
	PhotoXML string
	IndexXML string
}

type node struct {
	name     string
	attrs    []xml.Attr
	text     string
	children []node
}

func leaf(name, text string) node { return node{name: name, text: text} }

func group(name string, children ...node) node { return node{name: name, children: children} }

// GenerateDescriptors builds PHOTO.XML and INDEX_D.XML for an aligned photo/mapping pair.
func GenerateDescriptors(req *Request, mappings []FileMapping) (*Descriptors, error) {
	photoXML, err := GeneratePhotoXML(req.Standard, req.Photos, mappings)
	if err != nil {
		return nil, err
	}
	indexXML, err := GenerateIndexXML(req.Standard, req.Metadata, mappings)
	if err != nil {
		return nil, err
	}
	return &Descriptors{PhotoXML: photoXML, IndexXML: indexXML}, nil
}

func GeneratePhotoXML(std Standard, photos []Photo, mappings []FileMapping) (string, error) {
	if len(photos) != len(mappings) {
		return "", fmt.Errorf("photo descriptor: %d photos but %d mappings", len(photos), len(mappings))
	}
	root := node{
		name:  photoRootName,
		attrs: []xml.Attr{{Name: xml.Name{Local: "DTD_version"}, Value: std.DTDVersion}},
	}
	root.children = append(root.children, group("基礎情報",
		leaf("写真フォルダ名", std.PhotoFolder),
		leaf("適用要領基準", std.Code),
	))
	for i, m := range mappings {
		root.children = append(root.children, photoRecord(std, photos[i], m))
	}
	if std.SoftwareTag {
		root.children = append(root.children, leaf("ソフトメーカ用TAG", softwareName))
	}
	return renderDocument(root, std.PhotoDTD, std.PhotoXSL)
}

func photoRecord(std Standard, p Photo, m FileMapping) node {
	classification := group("撮影工種区分")
	if std.MajorClass != "" {
		classification.children = append(classification.children, leaf("写真-大分類", std.MajorClass))
	}
	classification.children = append(classification.children,
		leaf("写真区分", p.Category.Label),
		leaf("写真タイトル", photoTitle(p)),
	)
	return group("写真情報",
		group("写真ファイル情報",
			leaf("シリアル番号", strconv.Itoa(m.SerialNumber)),
			leaf("写真ファイル名", m.DeliveryFileName),
			leaf("写真ファイル日本語名", m.OriginalFileName),
			leaf("メディア番号", mediaNumber),
		),
		classification,
		group("撮影情報",
			leaf("撮影年月日", p.ShootingDate.String()),
		),
		leaf("代表写真", "0"),
		leaf("提出頻度写真", "0"),
	)
}

// photoTitle falls back to the original file name without its extension.
func photoTitle(p Photo) string {
	if p.Title != "" {
		return p.Title
	}
	return strings.TrimSuffix(p.Source.FileName, path.Ext(p.Source.FileName))
}

func GenerateIndexXML(std Standard, meta Metadata, mappings []FileMapping) (string, error) {
	files := group("写真情報", leaf("写真枚数", strconv.Itoa(len(mappings))))
	for _, m := range mappings {
		files.children = append(files.children, leaf("写真ファイル名", m.DeliveryFileName))
	}
	root := node{
		name:  indexRootName,
		attrs: []xml.Attr{{Name: xml.Name{Local: "DTD_version"}, Value: std.DTDVersion}},
		children: []node{
			group("基礎情報",
				leaf("メディア番号", mediaNumber),
				leaf("メディア総枚数", mediaNumber),
				leaf("適用要領基準", std.Code),
				leaf("写真管理基準", string(std.Version)),
				leaf("写真フォルダ名", std.PhotoFolder),
				leaf("写真管理ファイル名", PhotoFileName),
			),
			group("工事件名等",
				leaf("工事名称", meta.ConstructionName),
				leaf("工期開始日", meta.StartDate.String()),
				leaf("工期終了日", meta.EndDate.String()),
			),
			group("発注者情報",
				leaf("発注者機関事務所名", meta.OrdererName),
			),
			group("受注者情報",
				leaf("受注者名", meta.ContractorName),
			),
			files,
		},
	}
	if std.SoftwareTag {
		root.children = append(root.children, leaf("ソフトメーカ用TAG", softwareName))
	}
	return renderDocument(root, std.IndexDTD, std.IndexXSL)
}

func renderDocument(root node, dtd, xsl string) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<?xml version=\"1.0\" encoding=\"%s\"?>\n", xmlEncoding)
	fmt.Fprintf(&buf, "<!DOCTYPE %s SYSTEM \"%s\">\n", root.name, dtd)
	fmt.Fprintf(&buf, "<?xml-stylesheet type=\"text/xsl\" href=\"%s\"?>\n", xsl)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "\t")
	if err := encodeNode(enc, root); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", root.name, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to flush %s: %w", root.name, err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

func encodeNode(enc *xml.Encoder, n node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.name}, Attr: n.attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.text != "" {
		if err := enc.EncodeToken(xml.CharData(n.text)); err != nil {
			return err
		}
	}
	for _, c := range n.children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

// descriptorRefs is what the validator reads back out of a generated descriptor.
type descriptorRefs struct {
	Root       string
	Files      []string
	PhotoCount string
}

// parseDescriptor reads a descriptor the way a strict downstream consumer
// would. shiftJIS selects whether data holds encoded archive bytes or the
// UTF-8 text returned in previews.
func parseDescriptor(data []byte, shiftJIS bool) (*descriptorRefs, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		if !strings.EqualFold(label, xmlEncoding) {
			return nil, fmt.Errorf("unexpected encoding %q", label)
		}
		if shiftJIS {
			return japanese.ShiftJIS.NewDecoder().Reader(input), nil
		}
		return input, nil
	}

	refs := &descriptorRefs{}
	var stack []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				refs.Root = t.Name.Local
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			switch stack[len(stack)-1] {
			case "写真ファイル名":
				refs.Files = append(refs.Files, text)
			case "写真枚数":
				refs.PhotoCount = text
			}
		}
	}
	if refs.Root == "" {
		return nil, errors.New("document has no root element")
	}
	return refs, nil
}
