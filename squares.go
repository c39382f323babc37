package chessgrid

import (
	"fmt"

	"github.com/corentings/chess/v2"
)

// SquareAt returns the square under grid cell (row, col) of an 8x8 grid, assuming the
// board was rectified with a8 in the top-left corner (white at the bottom).
// The classifier never checks this orientation, so the name is nominal.
func SquareAt(row, col int) (chess.Square, error) {
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return chess.A1, fmt.Errorf("%w: cell (%d, %d) is outside an 8x8 board", ErrInvalidInput, row, col)
	}
	return chess.NewSquare(chess.File(col), chess.Rank(7-row)), nil
}

// SquareName is SquareAt as a string, or "" for cells outside an 8x8 board.
func SquareName(row, col int) string {
	sq, err := SquareAt(row, col)
	if err != nil {
		return ""
	}
	return sq.String()
}
