package delivery

import "strings"

type StandardVersion string

const (
	StandardR05 StandardVersion = "令和5年3月"
	StandardR04 StandardVersion = "令和4年3月"
	StandardH28 StandardVersion = "平成28年3月"
)

// LatestStandard is used when a request does not name a revision.
const LatestStandard = StandardR05

// Standard is the schema table for one revision of the photo management standard.
type Standard struct {
	Version      StandardVersion
	Code         string // 適用要領基準
	DTDVersion   string
	PhotoDTD     string
	PhotoXSL     string
	IndexDTD     string
	IndexXSL     string
	PhotoFolder  string
	MajorClass   string // 写真-大分類, empty when the revision does not carry it
	SoftwareTag  bool
	RequiresDate bool // 撮影年月日 is mandatory
}

var standards = map[StandardVersion]Standard{
	StandardR05: {
		Version:     StandardR05,
		Code:        "土木202303-01",
		DTDVersion:  "05",
		PhotoDTD:    "PHOTO05.DTD",
		PhotoXSL:    "PHOTO05.XSL",
		IndexDTD:    "INDE_D05.DTD",
		IndexXSL:    "INDE_D05.XSL",
		PhotoFolder: "PIC",
		MajorClass:  "工事",
		SoftwareTag: true,
	},
	StandardR04: {
		Version:     StandardR04,
		Code:        "土木202203-01",
		DTDVersion:  "05",
		PhotoDTD:    "PHOTO05.DTD",
		PhotoXSL:    "PHOTO05.XSL",
		IndexDTD:    "INDE_D05.DTD",
		IndexXSL:    "INDE_D05.XSL",
		PhotoFolder: "PIC",
		MajorClass:  "工事",
		SoftwareTag: true,
	},
	StandardH28: {
		Version:      StandardH28,
		Code:         "土木201603-01",
		DTDVersion:   "04",
		PhotoDTD:     "PHOTO04.DTD",
		PhotoXSL:     "PHOTO04.XSL",
		IndexDTD:     "INDE_D04.DTD",
		IndexXSL:     "INDE_D04.XSL",
		PhotoFolder:  "PIC",
		RequiresDate: true,
	},
}

// LookupStandard resolves a requested revision. An empty value selects the latest one.
func LookupStandard(version string) (Standard, error) {
	v := strings.TrimSpace(version)
	if v == "" {
		return standards[LatestStandard], nil
	}
	std, ok := standards[StandardVersion(v)]
	if !ok {
		return Standard{}, newValidationError(CodeUnsupportedStandardVersion, "standardVersion",
			"standard version %q is not supported", v)
	}
	return std, nil
}

// SupportedStandards lists revisions newest first.
func SupportedStandards() []StandardVersion {
	return []StandardVersion{StandardR05, StandardR04, StandardH28}
}
