package pdv

import "strconv"

// formatNumber renders a float64 the way SAS's default BEST. numeric
// format would: shortest round-tripping decimal representation, no
// trailing zeroes, integers with no decimal point.
func formatNumber(f float64) string {
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
