package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatThousands formats v with comma thousands separators and the given
// number of decimals: FormatThousands(1234567, 0) == "1,234,567".
func FormatThousands(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	if decimals < 0 {
		decimals = 0
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if decimals > 18 || v*math.Pow10(decimals) >= math.MaxInt64 {
		return sign + groupLarge(v, decimals)
	}
	scale := int64(math.Pow10(decimals))
	scaled := int64(math.Round(v * float64(scale)))
	whole, frac := scaled/scale, scaled%scale

	p := message.NewPrinter(language.English)
	out := p.Sprintf("%d", whole)
	if decimals > 0 {
		out += fmt.Sprintf(".%0*d", decimals, frac)
	}
	if sign != "" && strings.Trim(out, "0.,") == "" {
		sign = ""
	}
	return sign + out
}

// groupLarge formats a non-negative v past the int64 range.
func groupLarge(v float64, decimals int) string {
	digits := strconv.FormatFloat(v, 'f', decimals, 64)
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString("." + frac)
	}
	return b.String()
}
