package common

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatBRL renders a minor-unit amount as Brazilian currency, e.g.
// 123456789 -> "R$ 1.234.567,89".
func FormatBRL(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	units := minor / 100
	cents := minor % 100
	return fmt.Sprintf("%sR$ %s,%02d", sign, groupThousands(strconv.FormatInt(units, 10)), cents)
}

// FormatKg renders a weight in kilograms with up to one decimal place and
// thousand separators, e.g. 12500 -> "12.500 kg".
func FormatKg(kg float64) string {
	whole := int64(kg)
	frac := kg - float64(whole)
	out := groupThousands(strconv.FormatInt(whole, 10))
	if frac >= 0.05 {
		out += "," + strconv.Itoa(int(frac*10+0.5))
	}
	return out + " kg"
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
