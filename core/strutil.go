package core

import "golang.org/x/exp/constraints"

// utoa formats an unsigned integer without the fmt package, which is too
// large for the smaller targets.
func utoa[T constraints.Unsigned](n T) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// itoa formats a signed integer
func itoa(n int) string {
	if n < 0 {
		return "-" + utoa(uint64(-n))
	}
	return utoa(uint64(n))
}
