package delivery

import "strings"

// Category is one of the 写真区分 values of the photo management standard.
type Category struct {
	Code  string
	Label string
	Alias string
}

var categories = []Category{
	{Code: "01", Label: "着手前及び完成写真", Alias: "before_after"},
	{Code: "02", Label: "施工状況写真", Alias: "construction"},
	{Code: "03", Label: "安全管理写真", Alias: "safety"},
	{Code: "04", Label: "使用材料写真", Alias: "materials"},
	{Code: "05", Label: "品質管理写真", Alias: "quality"},
	{Code: "06", Label: "出来形管理写真", Alias: "as_built"},
	{Code: "07", Label: "災害写真", Alias: "disaster"},
	{Code: "08", Label: "事故写真", Alias: "accident"},
	{Code: "09", Label: "その他", Alias: "other"},
}

// CategoryOther receives photos whose category is not recognised.
var CategoryOther = categories[len(categories)-1]

// LookupCategory accepts either the Japanese label or the English alias.
func LookupCategory(value string) (Category, bool) {
	v := strings.TrimSpace(value)
	for _, c := range categories {
		if v == c.Label || strings.EqualFold(v, c.Alias) {
			return c, true
		}
	}
	return CategoryOther, false
}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
