package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCents renders an amount in minor units, e.g. 123456 -> "USD 1,234.56".
func FormatCents(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%s %s.%02d", sign, strings.ToUpper(currency), formatThousand(amount/100), amount%100)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
