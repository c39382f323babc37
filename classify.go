package chessgrid

import (
	"fmt"
	"image"
)

// ClassifyOptions tunes Classify. The zero value is not usable; start from DefaultClassifyOptions.
type ClassifyOptions struct {
	GridDim   int     // cells per side
	ClipLimit float64 // contrast limit of the adaptive equalization, <= 0 disables clipping
	TileGrid  int     // equalization tiles per side
	DarkRatio float64 // a cell is dark when its share of dark pixels is strictly above this
	LineWidth int     // outline width in the annotated image
	Labels    bool    // draw nominal square names (8x8 grids only)
}

// DefaultClassifyOptions returns the options for a standard 8x8 board.
func DefaultClassifyOptions() ClassifyOptions {
	return ClassifyOptions{
		GridDim:   8,
		ClipLimit: 2.0,
		TileGrid:  8,
		DarkRatio: 0.5,
		LineWidth: 2,
	}
}

// Cell is the classification of one grid cell.
type Cell struct {
	Row, Col  int
	Dark      bool
	DarkRatio float64
	Bounds    image.Rectangle // pixel block of the cell, relative to the image origin
}

// Square returns the nominal algebraic name of the cell, see SquareAt.
func (c Cell) Square() string {
	return SquareName(c.Row, c.Col)
}

// Classification is the outcome of classifying one rectified board.
type Classification struct {
	Annotated  *image.RGBA
	Cells      []Cell // row major
	DarkCount  int
	LightCount int
	Threshold  uint8 // binarization level chosen over the equalized image
}

// Classify splits img into a GridDim x GridDim grid and labels every cell dark or light.
//
// The image is converted to luma, equalized with CLAHE, and binarized with a single Otsu
// threshold. Cells are floor(height/GridDim) pixels square; rows and columns left over at
// the bottom and right edges are not classified. img is not modified.
func Classify(img image.Image, opts ClassifyOptions) (*Classification, error) {
	if opts.GridDim <= 0 {
		return nil, fmt.Errorf("%w: grid dimension must be positive, got %d", ErrInvalidInput, opts.GridDim)
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	cellSize := height / opts.GridDim
	if cellSize == 0 {
		return nil, fmt.Errorf("%w: image height %d is smaller than grid dimension %d", ErrInvalidInput, height, opts.GridDim)
	}
	if cellSize*opts.GridDim > width {
		return nil, fmt.Errorf("%w: image width %d cannot hold %d cells of %d pixels", ErrInvalidInput, width, opts.GridDim, cellSize)
	}

	gray := toGray(img)
	equalized := equalizeAdaptive(gray, opts.ClipLimit, opts.TileGrid, opts.TileGrid)

	t, ok := otsuThreshold(equalized)
	if !ok {
		t = fallbackThreshold
	}
	binary := binarize(equalized, t)

	res := &Classification{
		Cells:     make([]Cell, 0, opts.GridDim*opts.GridDim),
		Threshold: t,
	}

	total := float64(cellSize * cellSize)
	for row := range opts.GridDim {
		for col := range opts.GridDim {
			r := image.Rect(col*cellSize, row*cellSize, (col+1)*cellSize, (row+1)*cellSize)

			dark := 0
			for y := r.Min.Y; y < r.Max.Y; y++ {
				for x := r.Min.X; x < r.Max.X; x++ {
					if binary.Pix[y*binary.Stride+x] == binaryDark {
						dark++
					}
				}
			}

			ratio := float64(dark) / total
			c := Cell{
				Row:       row,
				Col:       col,
				Dark:      ratio > opts.DarkRatio,
				DarkRatio: ratio,
				Bounds:    r,
			}
			if c.Dark {
				res.DarkCount++
			} else {
				res.LightCount++
			}
			res.Cells = append(res.Cells, c)
		}
	}

	res.Annotated = annotate(img, res.Cells, opts.LineWidth, opts.Labels && opts.GridDim == 8)
	return res, nil
}
