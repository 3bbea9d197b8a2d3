package core

// ValidMove reports whether a proposed step from (x,y) to (tx,ty) is
// legal inside a width x height grid: exactly one axis changes, by
// exactly one cell, and the destination stays in bounds. Diagonals,
// jumps and zero-length moves all fail. Server position is authoritative;
// a failed check never mutates anything.
func ValidMove(x, y, tx, ty, width, height int) bool {
	if tx < 0 || tx >= width || ty < 0 || ty >= height {
		return false
	}
	dx := abs(x - tx)
	dy := abs(y - ty)
	return (dx == 1 && dy == 0) || (dx == 0 && dy == 1)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
