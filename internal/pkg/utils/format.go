package utils

import (
	"strconv"
	"strings"
)

// FormatGrouped renders n with the given number of decimal places and a
// thousands-style separator inserted every groupSize digits of the integer
// part. KRW amounts conventionally use 4-digit groups, USD amounts 3-digit.
// Example: FormatGrouped(12345678, 4, 0) => "1234,5678".
func FormatGrouped(n float64, groupSize, decimals int) string {
	s := strconv.FormatFloat(n, 'f', decimals, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}

	if groupSize > 0 && len(intPart) > groupSize {
		var b strings.Builder
		lead := len(intPart) % groupSize
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += groupSize {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+groupSize])
		}
		intPart = b.String()
	}

	out := intPart + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
