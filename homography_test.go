package chessgrid

import (
	"errors"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestComputeHomographyMapsCorners(t *testing.T) {
	src := Corners{{388, 54}, {965, 79}, {359, 636}, {938, 664}}
	dst := RectCorners(800, 800)

	h, err := ComputeHomography(src, dst)
	test.That(t, err, test.ShouldBeNil)

	for i := range src {
		p := h.Apply(src[i])
		test.That(t, p.X, test.ShouldAlmostEqual, dst[i].X, 1e-6)
		test.That(t, p.Y, test.ShouldAlmostEqual, dst[i].Y, 1e-6)
	}

	inv, err := h.Inverse()
	test.That(t, err, test.ShouldBeNil)
	for i := range dst {
		p := inv.Apply(dst[i])
		test.That(t, p.X, test.ShouldAlmostEqual, src[i].X, 1e-6)
		test.That(t, p.Y, test.ShouldAlmostEqual, src[i].Y, 1e-6)
	}

	// interior points survive the round trip too
	mid := r2.Point{X: 650, Y: 360}
	back := inv.Apply(h.Apply(mid))
	test.That(t, back.X, test.ShouldAlmostEqual, mid.X, 1e-6)
	test.That(t, back.Y, test.ShouldAlmostEqual, mid.Y, 1e-6)
}

func TestComputeHomographyIdentity(t *testing.T) {
	c := RectCorners(64, 48)
	h, err := ComputeHomography(c, c)
	test.That(t, err, test.ShouldBeNil)

	id := IdentityHomography()
	for r := range 3 {
		for col := range 3 {
			test.That(t, h.At(r, col), test.ShouldAlmostEqual, id.At(r, col), 1e-9)
		}
	}
}

func TestComputeHomographyDegenerate(t *testing.T) {
	dst := RectCorners(100, 100)

	for name, src := range map[string]Corners{
		"collinear":      {{0, 0}, {10, 10}, {20, 20}, {30, 30}},
		"three in a row": {{0, 0}, {50, 0}, {100, 0}, {50, 80}},
		"coincident":     {{5, 5}, {5, 5}, {0, 90}, {90, 90}},
		"all same":       {{7, 7}, {7, 7}, {7, 7}, {7, 7}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ComputeHomography(src, dst)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
		})
	}
}

func TestComputeHomographyVanishingLineThroughOrigin(t *testing.T) {
	// the sides of this trapezoid meet at (200, 0), so its vanishing line is y = 0
	src := Corners{{100, 400}, {300, 400}, {50, 600}, {350, 600}}
	test.That(t, src.IsConvex(), test.ShouldBeTrue)
	dst := RectCorners(400, 400)

	h, err := ComputeHomography(src, dst)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, h.At(2, 2), test.ShouldAlmostEqual, 0, 1e-9)

	for i := range src {
		p := h.Apply(src[i])
		test.That(t, p.X, test.ShouldAlmostEqual, dst[i].X, 1e-6)
		test.That(t, p.Y, test.ShouldAlmostEqual, dst[i].Y, 1e-6)
	}

	inv, err := h.Inverse()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, inv.At(2, 2), test.ShouldEqual, 1.0)
	for i := range dst {
		p := inv.Apply(dst[i])
		test.That(t, p.X, test.ShouldAlmostEqual, src[i].X, 1e-6)
		test.That(t, p.Y, test.ShouldAlmostEqual, src[i].Y, 1e-6)
	}
}
