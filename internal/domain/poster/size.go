package poster

// Size describes a paper size option in inches.
type Size struct {
	Name     string  `json:"name"`
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
}

// SizeCatalog lists the supported paper sizes in display order.
var SizeCatalog = []Size{
	{Name: "8x10", WidthIn: 8, HeightIn: 10},
	{Name: "12x16", WidthIn: 12, HeightIn: 16},
	{Name: "18x24", WidthIn: 18, HeightIn: 24},
	{Name: "24x36", WidthIn: 24, HeightIn: 36},
}

// SizeByName looks up a size option by its catalog name.
func SizeByName(name string) (Size, bool) {
	for _, s := range SizeCatalog {
		if s.Name == name {
			return s, true
		}
	}
	return Size{}, false
}

// Defaults applied when the form omits a field.
const (
	DefaultTheme    = "feature_based"
	DefaultSize     = "12x16"
	DefaultDistance = 29000
	DefaultDPI      = 300
)

// DPI and radius bounds accepted from the form.
const (
	MinDPI      = 72
	MaxDPI      = 600
	MinDistance = 1000
	MaxDistance = 50000
)
