package chessgrid

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// collinearTolerance is relative to the squared length of the longest side of a corner triangle.
const collinearTolerance = 1e-9

// nullSpaceTolerance is relative to the largest singular value (or matrix norm).
const nullSpaceTolerance = 1e-12

// Homography is a 3x3 projective transform, stored row major.
type Homography struct {
	m [9]float64
}

// IdentityHomography returns the identity transform.
func IdentityHomography() Homography {
	return Homography{m: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// ComputeHomography solves for the transform mapping each src corner onto the dst corner in the same slot.
//
// It is a direct linear transform over the 4 correspondences: both point sets are normalized
// (centroid at the origin, mean distance sqrt(2)) and the homogeneous 8x9 system is solved for its
// null space with an SVD. The result is scaled so h22 is 1 unless h22 is zero, which happens when
// the source origin lies on the vanishing line of the board.
func ComputeHomography(src, dst Corners) (Homography, error) {
	if err := checkQuad(src); err != nil {
		return Homography{}, fmt.Errorf("source corners: %w", err)
	}
	if err := checkQuad(dst); err != nil {
		return Homography{}, fmt.Errorf("destination corners: %w", err)
	}

	ts := normalizer(src)
	td := normalizer(dst)

	a := mat.NewDense(8, 9, nil)
	for i := range 4 {
		s := ts.Apply(src[i])
		d := td.Apply(dst[i])
		r := 2 * i

		a.SetRow(r, []float64{s.X, s.Y, 1, 0, 0, 0, -s.X * d.X, -s.Y * d.X, -d.X})
		a.SetRow(r+1, []float64{0, 0, 0, s.X, s.Y, 1, -s.X * d.Y, -s.Y * d.Y, -d.Y})
	}

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return Homography{}, fmt.Errorf("%w: svd did not converge", ErrDegenerateGeometry)
	}
	values := svd.Values(nil)
	if values[0] == 0 || values[len(values)-1] <= nullSpaceTolerance*values[0] {
		return Homography{}, fmt.Errorf("%w: correspondences do not fix a single transform", ErrDegenerateGeometry)
	}

	var v mat.Dense
	svd.VTo(&v)
	hn := mat.NewDense(3, 3, nil)
	for i := range 9 {
		hn.Set(i/3, i%3, v.At(i, 8))
	}

	// undo the normalization: H = td^-1 * hn * ts
	var tmp, full mat.Dense
	tmp.Mul(hn, ts.dense())
	full.Mul(td.inverseDense(), &tmp)

	var out Homography
	norm := 0.0
	for i := range 9 {
		out.m[i] = full.At(i/3, i%3)
		norm += out.m[i] * out.m[i]
	}
	norm = math.Sqrt(norm)

	scale := norm
	if math.Abs(out.m[8]) > nullSpaceTolerance*norm {
		scale = out.m[8]
	}
	for i := range out.m {
		out.m[i] /= scale
	}

	for _, x := range out.m {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Homography{}, fmt.Errorf("%w: transform is not finite", ErrDegenerateGeometry)
		}
	}
	return out, nil
}

// similarity is the scale-and-translate transform used to condition the DLT system.
type similarity struct {
	s, tx, ty float64
}

// normalizer moves the centroid of c to the origin and scales the mean distance to sqrt(2).
// checkQuad guarantees the corners are not all coincident.
func normalizer(c Corners) similarity {
	var cx, cy float64
	for _, p := range c {
		cx += p.X / 4
		cy += p.Y / 4
	}
	mean := 0.0
	for _, p := range c {
		mean += math.Hypot(p.X-cx, p.Y-cy) / 4
	}
	s := math.Sqrt2 / mean
	return similarity{s: s, tx: -s * cx, ty: -s * cy}
}

func (n similarity) Apply(p r2.Point) r2.Point {
	return r2.Point{X: n.s*p.X + n.tx, Y: n.s*p.Y + n.ty}
}

func (n similarity) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{n.s, 0, n.tx, 0, n.s, n.ty, 0, 0, 1})
}

func (n similarity) inverseDense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1 / n.s, 0, -n.tx / n.s, 0, 1 / n.s, -n.ty / n.s, 0, 0, 1})
}

// checkQuad rejects corner sets where any three corners are (nearly) collinear,
// which covers coincident corners as well.
func checkQuad(c Corners) error {
	triples := [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	for _, t := range triples {
		p, q, r := c[t[0]], c[t[1]], c[t[2]]
		area := math.Abs(q.Sub(p).Cross(r.Sub(p)))
		scale := math.Max(q.Sub(p).Norm(), math.Max(r.Sub(p).Norm(), r.Sub(q).Norm()))
		if scale == 0 || area <= collinearTolerance*scale*scale {
			return fmt.Errorf("%w: corners %d, %d and %d are collinear or coincident",
				ErrDegenerateGeometry, t[0], t[1], t[2])
		}
	}
	return nil
}

// Inverse returns the inverse transform.
func (h Homography) Inverse() (Homography, error) {
	m := mat.NewDense(3, 3, h.m[:])

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Homography{}, fmt.Errorf("%w: transform is not invertible: %v", ErrDegenerateGeometry, err)
	}

	var out Homography
	for r := range 3 {
		for c := range 3 {
			out.m[r*3+c] = inv.At(r, c)
		}
	}
	if out.m[8] != 0 {
		s := out.m[8]
		for i := range out.m {
			out.m[i] /= s
		}
	}
	return out, nil
}

// Apply maps p through the transform. Points that land on the line at infinity come back as NaN.
func (h Homography) Apply(p r2.Point) r2.Point {
	w := h.m[6]*p.X + h.m[7]*p.Y + h.m[8]
	if math.Abs(w) < 1e-12 {
		return r2.Point{X: math.NaN(), Y: math.NaN()}
	}
	return r2.Point{
		X: (h.m[0]*p.X + h.m[1]*p.Y + h.m[2]) / w,
		Y: (h.m[3]*p.X + h.m[4]*p.Y + h.m[5]) / w,
	}
}

// At returns the matrix element at row r, column c.
func (h Homography) At(r, c int) float64 {
	return h.m[r*3+c]
}
