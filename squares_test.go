package chessgrid

import (
	"errors"
	"testing"

	"github.com/corentings/chess/v2"
	"go.viam.com/test"
)

func TestSquareAt(t *testing.T) {
	sq, err := SquareAt(0, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sq, test.ShouldEqual, chess.A8)

	sq, err = SquareAt(7, 7)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sq, test.ShouldEqual, chess.H1)

	test.That(t, SquareName(7, 0), test.ShouldEqual, "a1")
	test.That(t, SquareName(0, 7), test.ShouldEqual, "h8")
	test.That(t, SquareName(3, 4), test.ShouldEqual, "e5")

	_, err = SquareAt(8, 0)
	test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	test.That(t, SquareName(0, -1), test.ShouldEqual, "")
}
