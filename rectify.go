package chessgrid

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/geo/r2"
)

var fillColor = color.RGBA{0, 0, 0, 255}

// Rectify warps the quadrilateral given by corners into a new width x height image.
// Sampling is bilinear; destination pixels that map outside img are black.
// img is not modified.
func Rectify(img image.Image, corners Corners, width, height int) (*image.RGBA, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("%w: target size must be at least 2x2, got %dx%d", ErrInvalidInput, width, height)
	}

	h, err := ComputeHomography(corners, RectCorners(width, height))
	if err != nil {
		return nil, err
	}

	inv, err := h.Inverse()
	if err != nil {
		return nil, err
	}

	return warpPerspective(img, inv, width, height), nil
}

// warpPerspective fills a width x height image by pulling every pixel from src through inv.
func warpPerspective(src image.Image, inv Homography, width, height int) *image.RGBA {
	// work on a zero-origin RGBA copy so sampling does not go through the color.Color interface
	in := toRGBA(src)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := range height {
		for x := range width {
			p := inv.Apply(r2.Point{X: float64(x), Y: float64(y)})
			dst.SetRGBA(x, y, sampleBilinear(in, p.X, p.Y))
		}
	}
	return dst
}

func sampleBilinear(img *image.RGBA, fx, fy float64) color.RGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if math.IsNaN(fx) || math.IsNaN(fy) {
		return fillColor
	}
	// round-off from the inverse transform must not push the image edge out of bounds
	const edge = 1e-6
	if fx < -edge || fy < -edge || fx > float64(w-1)+edge || fy > float64(h-1)+edge {
		return fillColor
	}
	fx = math.Min(math.Max(fx, 0), float64(w-1))
	fy = math.Min(math.Max(fy, 0), float64(h-1))

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	x1 := min(x0+1, w-1)
	y1 := min(y0+1, h-1)
	ax := fx - float64(x0)
	ay := fy - float64(y0)

	c00 := img.RGBAAt(x0, y0)
	c10 := img.RGBAAt(x1, y0)
	c01 := img.RGBAAt(x0, y1)
	c11 := img.RGBAAt(x1, y1)

	mix := func(v00, v10, v01, v11 uint8) uint8 {
		top := float64(v00)*(1-ax) + float64(v10)*ax
		bottom := float64(v01)*(1-ax) + float64(v11)*ax
		return uint8(math.Round(top*(1-ay) + bottom*ay))
	}

	return color.RGBA{
		R: mix(c00.R, c10.R, c01.R, c11.R),
		G: mix(c00.G, c10.G, c01.G, c11.G),
		B: mix(c00.B, c10.B, c01.B, c11.B),
		A: mix(c00.A, c10.A, c01.A, c11.A),
	}
}

// toRGBA returns a zero-origin RGBA copy of img.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
