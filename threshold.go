package chessgrid

import (
	"image"
)

const (
	binaryDark  = 0
	binaryLight = 255

	// used when the image has a single intensity level and Otsu has nothing to split
	fallbackThreshold = 127
)

// toGray converts img to a zero-origin 8-bit luma image using the Rec. 601 weights.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := range b.Dy() {
		for x := range b.Dx() {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r8, g8, b8 := int(r>>8), int(g>>8), int(bl>>8)
			gray.Pix[y*gray.Stride+x] = uint8((299*r8 + 587*g8 + 114*b8 + 500) / 1000)
		}
	}
	return gray
}

// otsuThreshold returns the level t that maximizes the between-class variance of
// {v <= t} and {v > t}. ok is false when every pixel has the same value.
func otsuThreshold(gray *image.Gray) (t uint8, ok bool) {
	var hist [256]int
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	total := 0
	sumAll := 0.0
	for i, n := range hist {
		total += n
		sumAll += float64(i * n)
	}

	best := -1.0
	count1 := 0
	sum1 := 0.0
	for i := range 255 {
		count1 += hist[i]
		sum1 += float64(i * hist[i])

		count2 := total - count1
		if count1 == 0 || count2 == 0 {
			continue
		}

		mean1 := sum1 / float64(count1)
		mean2 := (sumAll - sum1) / float64(count2)
		between := float64(count1) * float64(count2) * (mean1 - mean2) * (mean1 - mean2)
		if between > best {
			best = between
			t = uint8(i)
			ok = true
		}
	}
	return t, ok
}

// binarize maps every pixel above t to binaryLight and the rest to binaryDark.
func binarize(gray *image.Gray, t uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		for x := range b.Dx() {
			if gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y > t {
				out.Pix[y*out.Stride+x] = binaryLight
			} else {
				out.Pix[y*out.Stride+x] = binaryDark
			}
		}
	}
	return out
}
