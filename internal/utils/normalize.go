package utils

import "fmt"

// CreateRankList creates a slice of ranks based on position.
// The rank starts at 1 for the first item and increments for subsequent items.
// Useful for ranking items that are already sorted.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := 0; i < count; i++ {
		ranks[i] = uint16(i + 1)
	}
	return ranks
}

// FormatFrequency renders a [0,1] frequency with a fixed number of decimals.
func FormatFrequency(f float64, precision int) string {
	if precision < 0 {
		precision = 3
	}
	return fmt.Sprintf("%5.*f", precision, f)
}
