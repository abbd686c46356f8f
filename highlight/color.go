package highlight

import (
	"fmt"
	"strconv"
	"strings"
)

type rgb struct {
	r, g, b int
}

// parseHexColor accepts "#rrggbb" and "#rgb" (hash optional).
func parseHexColor(s string) (rgb, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return rgb{}, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{
		r: int(v >> 16 & 0xff),
		g: int(v >> 8 & 0xff),
		b: int(v & 0xff),
	}, true
}

// BlendColors averages the RGB channels of every contributing color in a
// single pass over the final set, so the blend is independent of the order
// in which formulas matched. Unparsable colors are skipped; if none parse,
// the first input is returned unchanged.
func BlendColors(colors []string) string {
	var sum rgb
	n := 0
	for _, c := range colors {
		p, ok := parseHexColor(c)
		if !ok {
			continue
		}
		sum.r += p.r
		sum.g += p.g
		sum.b += p.b
		n++
	}
	if n == 0 {
		if len(colors) > 0 {
			return colors[0]
		}
		return ""
	}
	// Round half up per channel.
	return fmt.Sprintf("#%02x%02x%02x",
		(sum.r+n/2)/n,
		(sum.g+n/2)/n,
		(sum.b+n/2)/n,
	)
}
