package utils

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var trPrinter = message.NewPrinter(language.Turkish)

// FormatTurkishNumber renders n rounded to an integer with Turkish digit
// grouping, e.g. 127500 -> "127.500".
func FormatTurkishNumber(n float64) string {
	return trPrinter.Sprintf("%d", int64(math.Round(n)))
}

// FormatClock renders fractional hours as HH:MM.
func FormatClock(hour float64) string {
	h := math.Floor(hour)
	m := math.Round((hour - h) * 60)
	return fmt.Sprintf("%02d:%02d", int(h), int(m))
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
