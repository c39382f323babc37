package chessgrid

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	darkHue    = colorful.Hsv(0, 1, 1)
	lightHue   = colorful.Hsv(120, 1, 1)
	tieGray    = colorful.Hsv(0, 0, 0.5)
	labelColor = rgba(colorful.Hsv(240, 1, 1))

	// DarkCellColor outlines cells that are entirely dark.
	DarkCellColor = rgba(darkHue)
	// LightCellColor outlines cells that are entirely light.
	LightCellColor = rgba(lightHue)
)

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}
}

// outlineColor fades from the class color toward gray as the cell's dark ratio nears 0.5.
func outlineColor(c Cell) color.RGBA {
	base, certainty := lightHue, 1-c.DarkRatio
	if c.Dark {
		base, certainty = darkHue, c.DarkRatio
	}

	t := math.Min(math.Max(2*certainty-1, 0), 1)
	if t == 1 {
		return rgba(base)
	}
	return rgba(tieGray.BlendLab(base, t).Clamped())
}

// drawRect outlines r (inclusive of Max) with bands of the given width growing inward.
func drawRect(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if (image.Point{x, y}).In(bounds) {
			img.SetRGBA(x, y, c)
		}
	}

	for i := range width {
		for x := r.Min.X; x <= r.Max.X; x++ {
			set(x, r.Min.Y+i)
			set(x, r.Max.Y-i)
		}
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			set(r.Min.X+i, y)
			set(r.Max.X-i, y)
		}
	}
}

func drawString(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

// annotate draws every cell outline, and optionally its square name, onto a copy of img.
func annotate(img image.Image, cells []Cell, lineWidth int, labels bool) *image.RGBA {
	out := toRGBA(img)

	for _, c := range cells {
		drawRect(out, c.Bounds, lineWidth, outlineColor(c))

		if labels {
			name := SquareName(c.Row, c.Col)
			if name == "" {
				continue
			}
			textX := c.Bounds.Min.X + c.Bounds.Dx()/2 - len(name)*3
			textY := c.Bounds.Min.Y + c.Bounds.Dy()/2 + 3
			drawString(out, textX, textY, name, labelColor)
		}
	}

	return out
}
