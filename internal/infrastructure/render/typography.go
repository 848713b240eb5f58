package render

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// cityTitle holds the resolved title layout for a poster.
type cityTitle struct {
	Lines    []string
	BaseSize float64 // point size at 300 DPI reference
}

// layoutCityTitle sizes and spaces the city name based on its length.
// Short names get wide letter spacing and a large face; very long names
// wrap onto two lines.
func layoutCityTitle(city string) cityTitle {
	upper := strings.ToUpper(city)
	// Character count, not bytes: non-Latin names must size the same way
	// their Latin-length equivalents do.
	n := utf8.RuneCountInString(upper)

	var baseSize float64
	var spacing string
	switch {
	case n <= 8:
		baseSize, spacing = 60, "  "
	case n <= 12:
		baseSize, spacing = 48, " "
	case n <= 18:
		baseSize, spacing = 36, " "
	default:
		baseSize, spacing = 28, ""
	}

	if n > 20 {
		line1, line2 := splitTitle(upper)
		return cityTitle{Lines: []string{line1, line2}, BaseSize: baseSize}
	}

	return cityTitle{Lines: []string{spaceOut(upper, spacing)}, BaseSize: baseSize}
}

// splitTitle breaks a long name into two lines near its midpoint,
// preferring a word boundary.
func splitTitle(s string) (string, string) {
	words := strings.Fields(s)
	if len(words) > 1 {
		mid := utf8.RuneCountInString(s) / 2
		currentLen := 0
		splitIndex := 0
		for i, word := range words {
			if i > 0 {
				currentLen++
			}
			currentLen += utf8.RuneCountInString(word)
			if currentLen >= mid {
				splitIndex = i
				break
			}
		}
		return strings.Join(words[:splitIndex+1], " "), strings.Join(words[splitIndex+1:], " ")
	}
	// Single word: split on a rune boundary so multi-byte characters
	// survive the cut.
	runes := []rune(s)
	mid := len(runes) / 2
	return string(runes[:mid]), string(runes[mid:])
}

// spaceOut inserts the spacer between every character of s.
func spaceOut(s, spacer string) string {
	if spacer == "" {
		return s
	}
	chars := strings.Split(s, "")
	return strings.Join(chars, spacer)
}

// formatCoordinates renders "48.8566° N / 2.3522° E" style labels.
func formatCoordinates(lat, lon float64) string {
	ns := "N"
	if lat < 0 {
		ns = "S"
	}
	ew := "E"
	if lon < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.4f° %s / %.4f° %s", math.Abs(lat), ns, math.Abs(lon), ew)
}
