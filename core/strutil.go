package core

// utoa64 converts an unsigned integer to a string without using the fmt
// package. This is a lightweight alternative for embedded targets.
func utoa64(n uint64) string {
	if n == 0 {
		return "0"
	}

	// Count digits
	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	// Build string from right to left
	buf := make([]byte, digits)
	pos := digits - 1

	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	return string(buf)
}

// utox converts an unsigned integer to a hexadecimal string
func utox(n uint32) string {
	const hexdigits = "0123456789ABCDEF"
	if n == 0 {
		return "0"
	}

	var buf [8]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = hexdigits[n&0xF]
		n >>= 4
	}

	return string(buf[pos:])
}
