package chessgrid

import (
	"image"
	"math"
)

// equalizeAdaptive is contrast limited adaptive histogram equalization over a tilesX x tilesY grid.
// Each tile gets its own clipped histogram lookup table; pixels are mapped by bilinear
// interpolation between the tables of the four nearest tile centers.
// A clipLimit <= 0 disables clipping.
func equalizeAdaptive(gray *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return out
	}

	tilesX = max(1, min(tilesX, width))
	tilesY = max(1, min(tilesY, height))
	tileW := (width + tilesX - 1) / tilesX
	tileH := (height + tilesY - 1) / tilesY
	// drop tiles that would be empty after rounding the tile size up
	tilesX = (width + tileW - 1) / tileW
	tilesY = (height + tileH - 1) / tileH

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := range tilesY {
		for tx := range tilesX {
			r := image.Rect(tx*tileW, ty*tileH, min((tx+1)*tileW, width), min((ty+1)*tileH, height))
			luts[ty*tilesX+tx] = tileLUT(gray, r.Add(b.Min), clipLimit)
		}
	}

	invW := 1 / float64(tileW)
	invH := 1 / float64(tileH)

	for y := range height {
		tyf := float64(y)*invH - 0.5
		ty1 := int(math.Floor(tyf))
		ty2 := ty1 + 1
		ya := tyf - float64(ty1)
		ty1 = max(ty1, 0)
		ty2 = min(ty2, tilesY-1)

		for x := range width {
			txf := float64(x)*invW - 0.5
			tx1 := int(math.Floor(txf))
			tx2 := tx1 + 1
			xa := txf - float64(tx1)
			tx1 = max(tx1, 0)
			tx2 = min(tx2, tilesX-1)

			v := gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y

			top := float64(luts[ty1*tilesX+tx1][v])*(1-xa) + float64(luts[ty1*tilesX+tx2][v])*xa
			bottom := float64(luts[ty2*tilesX+tx1][v])*(1-xa) + float64(luts[ty2*tilesX+tx2][v])*xa
			out.Pix[y*out.Stride+x] = clampUint8(top*(1-ya) + bottom*ya)
		}
	}

	return out
}

// tileLUT builds the equalization table of one tile, with the histogram clipped at
// clipLimit times the mean bin height and the excess spread back over all bins.
func tileLUT(gray *image.Gray, r image.Rectangle, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	area := r.Dx() * r.Dy()

	if clipLimit > 0 {
		limit := max(int(clipLimit*float64(area)/256), 1)

		clipped := 0
		for i := range hist {
			if hist[i] > limit {
				clipped += hist[i] - limit
				hist[i] = limit
			}
		}

		batch := clipped / 256
		residual := clipped - batch*256
		for i := range hist {
			hist[i] += batch
		}
		if residual > 0 {
			step := max(256/residual, 1)
			for i := 0; i < 256 && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	var lut [256]uint8
	scale := 255 / float64(area)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = clampUint8(float64(sum) * scale)
	}
	return lut
}

func clampUint8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
