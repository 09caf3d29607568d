package geometry

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var hslLightness = regexp.MustCompile(`^hsla?\(\s*[-\d.]+(?:deg)?\s*[\s,]\s*[\d.]+%\s*[\s,]\s*([\d.]+)%`)

// DeriveStrokeColor darkens a fill color for the hull outline. Hex colors
// are scaled by 0.8 per channel; HSL colors lose 10 points of lightness.
// Anything else is returned unchanged.
func DeriveStrokeColor(color string) string {
	c := strings.TrimSpace(color)
	if strings.HasPrefix(c, "#") {
		if r, g, b, ok := parseHex(c[1:]); ok {
			return fmt.Sprintf("rgb(%d,%d,%d)", darken(r), darken(g), darken(b))
		}
		return color
	}

	m := hslLightness.FindStringSubmatchIndex(c)
	if m == nil {
		return color
	}
	l, err := strconv.ParseFloat(c[m[2]:m[3]], 64)
	if err != nil {
		return color
	}
	l = math.Max(0, l-10)
	return c[:m[2]] + strconv.FormatFloat(l, 'f', -1, 64) + c[m[3]:]
}

func parseHex(s string) (r, g, b uint8, ok bool) {
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func darken(c uint8) int {
	v := math.Round(float64(c) * 0.8)
	return int(math.Min(255, math.Max(0, v)))
}
