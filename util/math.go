package util

import "math"

// RoundUp rounds the input number up, with places representing the number of decimal places.
func RoundUp(input float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Ceil(pow*input) / pow
}

// Average returns the average of the vals, rounded up to two places. The
// average of no values is zero.
func Average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}

	total := 0.0
	for _, v := range vals {
		total += v
	}
	return RoundUp(total/float64(len(vals)), 2)
}

// NormalizeIndex maps a possibly negative index onto [0, length), counting
// negative values from the end. The boolean is false when idx is out of
// range.
func NormalizeIndex(idx, length int) (int, bool) {
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}
