package format

import (
	"fmt"
	"strconv"
)

var byteUnits = [...]string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes renders n with 1024-based units and two decimals, for
// example "1.50 GB". Values under 1 KB are printed as whole bytes.
func FormatBytes(n uint64) string {
	if n < 1024 {
		return strconv.FormatUint(n, 10) + " B"
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[i])
}

// FormatPercent renders a percentage with one decimal. Negative values are
// measurement failures and render as "n/a".
func FormatPercent(p float64) string {
	if p < 0 {
		return "n/a"
	}
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}
