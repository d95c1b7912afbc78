package pdfreport

import (
	"math"

	"github.com/verte-zerg/sitereport/internal/model"
)

type rgb struct {
	r, g, b int
}

// scale is a sequential colour map sampled at evenly spaced stops.
type scale []rgb

var (
	ylOrRd = scale{
		{255, 255, 204}, {255, 237, 160}, {254, 217, 118}, {254, 178, 76},
		{253, 141, 60}, {252, 78, 42}, {227, 26, 28}, {189, 0, 38}, {128, 0, 38},
	}
	blues   = scale{{247, 251, 255}, {198, 219, 239}, {107, 174, 214}, {33, 113, 181}, {8, 48, 107}}
	greens  = scale{{247, 252, 245}, {199, 233, 192}, {116, 196, 118}, {35, 139, 69}, {0, 68, 27}}
	purples = scale{{252, 251, 253}, {218, 218, 235}, {158, 154, 200}, {106, 81, 163}, {63, 0, 125}}
	oranges = scale{{255, 245, 235}, {253, 208, 162}, {253, 141, 60}, {217, 72, 1}, {127, 39, 4}}
)

var deviceScales = map[model.Device]scale{
	model.Desktop:       blues,
	model.MobileDisplay: greens,
	model.Tablet:        purples,
	model.OtherDevices:  oranges,
}

// at returns the colour for t in [0,1].
func (s scale) at(t float64) rgb {
	if len(s) == 0 {
		return rgb{255, 255, 255}
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(s)-1)
	i := int(math.Floor(pos))
	if i >= len(s)-1 {
		return s[len(s)-1]
	}
	frac := pos - float64(i)
	a, b := s[i], s[i+1]
	return rgb{
		r: lerp(a.r, b.r, frac),
		g: lerp(a.g, b.g, frac),
		b: lerp(a.b, b.b, frac),
	}
}

func lerp(a, b int, t float64) int {
	return int(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// dark reports whether light text reads better on c.
func (c rgb) dark() bool {
	return 0.299*float64(c.r)+0.587*float64(c.g)+0.114*float64(c.b) < 140
}

// slicePalette colours pie slices in order.
var slicePalette = []rgb{
	{31, 119, 180}, {255, 127, 14}, {44, 160, 44}, {214, 39, 40}, {148, 103, 189},
	{140, 86, 75}, {227, 119, 194}, {127, 127, 127}, {188, 189, 34}, {23, 190, 207},
}

func sliceColor(i int) rgb {
	return slicePalette[i%len(slicePalette)]
}

var (
	headerFill = rgb{52, 73, 94}
	stripeFill = rgb{242, 244, 247}
	gridColor  = rgb{255, 255, 255}
	textColor  = rgb{33, 33, 33}
)
