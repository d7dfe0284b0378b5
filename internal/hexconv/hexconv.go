package hexconv

// Invalid is the value Halfbyte holds for characters which aren't hex digits.
const Invalid = 0xFF

// Halfbyte maps a hex digit character to its value, or to Invalid otherwise.
var Halfbyte = func() (table [256]byte) {
	for i := range table {
		table[i] = Invalid
	}

	for c := byte('0'); c <= '9'; c++ {
		table[c] = c - '0'
	}

	for c := byte('a'); c <= 'f'; c++ {
		table[c] = c - 'a' + 10
		table[c-'a'+'A'] = c - 'a' + 10
	}

	return table
}()

// Prefix returns the value of the leading hex digits of the string and how many of them
// there are. Overflow is reported via ok=false if more than maxDigits digits are present.
func Prefix(str string, maxDigits int) (value uint64, digits int, ok bool) {
	for ; digits < len(str); digits++ {
		halfbyte := Halfbyte[str[digits]]
		if halfbyte == Invalid {
			break
		}

		if digits == maxDigits {
			return 0, digits, false
		}

		value = (value << 4) | uint64(halfbyte)
	}

	return value, digits, true
}
