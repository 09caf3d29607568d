package socialgraph

import (
	"fmt"
	"unicode/utf16"
)

// GroupColors is the palette offered by the group form. The first entry is
// the default for new groups.
var GroupColors = []string{
	"#4f86f7",
	"#f76b4f",
	"#3fbf7f",
	"#f7c24f",
	"#a64ff7",
	"#4fd1f7",
	"#f74fa6",
	"#8c8c8c",
}

// SeededColor maps a name to a stable hue. The hash runs over UTF-16 code
// units with 32-bit wraparound on the shift so the same name yields the
// same color in every client.
func SeededColor(name string) string {
	h := int64(5381)
	for _, c := range utf16.Encode([]rune(name)) {
		shifted := int32(uint32(int32(uint32(h))) << 5)
		h = int64(shifted) + h + int64(c)
	}
	return fmt.Sprintf("hsl(%d 60%% 60%%)", uint32(h)%360)
}
