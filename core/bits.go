package core

import "golang.org/x/exp/constraints"

func bitMask[T constraints.Unsigned](bit uint8) T {
	return T(1) << bit
}

func setBit[T constraints.Unsigned](v T, bit uint8) T {
	return v | bitMask[T](bit)
}

func clearBit[T constraints.Unsigned](v T, bit uint8) T {
	return v &^ bitMask[T](bit)
}

func readBit[T constraints.Unsigned](v T, bit uint8) bool {
	return v&bitMask[T](bit) != 0
}

// countBits returns the number of set bits.
func countBits[T constraints.Unsigned](v T) int {
	n := 0
	for ; v != 0; v &= v - 1 {
		n++
	}
	return n
}
