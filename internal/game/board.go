package game

import "encoding/json"

// Mark is the symbol a player's moves are rendered as.
type Mark string

const (
	Empty Mark = ""
	MarkX Mark = "X"
	MarkO Mark = "O"
)

const BoardSize = 9

// Board is the 3x3 grid in row-major order.
type Board [BoardSize]Mark

// winLines lists every combination that wins the game
var winLines = [8][3]int{
	{0, 1, 2}, // top row
	{3, 4, 5}, // middle row
	{6, 7, 8}, // bottom row
	{0, 3, 6}, // left column
	{1, 4, 7}, // middle column
	{2, 5, 8}, // right column
	{0, 4, 8}, // diagonal
	{2, 4, 6}, // anti-diagonal
}

// Winner returns the mark holding a full line, or Empty.
func (b Board) Winner() Mark {
	for _, line := range winLines {
		m := b[line[0]]
		if m != Empty && m == b[line[1]] && m == b[line[2]] {
			return m
		}
	}
	return Empty
}

// Full reports whether no cell is empty.
func (b Board) Full() bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// MarshalJSON renders empty cells as null, the way clients expect them.
func (b Board) MarshalJSON() ([]byte, error) {
	cells := make([]*string, BoardSize)
	for i, cell := range b {
		if cell != Empty {
			s := string(cell)
			cells[i] = &s
		}
	}
	return json.Marshal(cells)
}
