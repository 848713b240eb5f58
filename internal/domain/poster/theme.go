package poster

// Theme defines the colors used to draw a poster. Themes are loaded from
// JSON files in the themes directory; DefaultTheme names the fallback.
type Theme struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Background    string `json:"bg"`
	Text          string `json:"text"`
	GradientColor string `json:"gradient_color"`
	Water         string `json:"water"`
	Parks         string `json:"parks"`

	RoadMotorway    string `json:"road_motorway"`
	RoadPrimary     string `json:"road_primary"`
	RoadSecondary   string `json:"road_secondary"`
	RoadTertiary    string `json:"road_tertiary"`
	RoadResidential string `json:"road_residential"`
	RoadDefault     string `json:"road_default"`
}

// FallbackTheme is the embedded feature_based theme used when the theme
// file cannot be read.
func FallbackTheme() Theme {
	return Theme{
		Name:            "Feature-Based Shading",
		Background:      "#FFFFFF",
		Text:            "#000000",
		GradientColor:   "#FFFFFF",
		Water:           "#C0C0C0",
		Parks:           "#F0F0F0",
		RoadMotorway:    "#0A0A0A",
		RoadPrimary:     "#1A1A1A",
		RoadSecondary:   "#2A2A2A",
		RoadTertiary:    "#3A3A3A",
		RoadResidential: "#4A4A4A",
		RoadDefault:     "#3A3A3A",
	}
}

// RoadStyle pairs a stroke color with a line width in points.
type RoadStyle struct {
	Color string
	Width float64
}

// StyleForHighway buckets an OSM highway class into a theme color and
// line width. List-valued highway tags must be reduced to their first
// entry before calling.
func (t Theme) StyleForHighway(highway string) RoadStyle {
	switch highway {
	case "motorway", "motorway_link":
		return RoadStyle{Color: t.RoadMotorway, Width: 1.2}
	case "trunk", "trunk_link", "primary", "primary_link":
		return RoadStyle{Color: t.RoadPrimary, Width: 1.0}
	case "secondary", "secondary_link":
		return RoadStyle{Color: t.RoadSecondary, Width: 0.8}
	case "tertiary", "tertiary_link":
		return RoadStyle{Color: t.RoadTertiary, Width: 0.6}
	case "residential", "living_street", "unclassified":
		return RoadStyle{Color: t.RoadResidential, Width: 0.4}
	default:
		return RoadStyle{Color: t.RoadDefault, Width: 0.4}
	}
}
