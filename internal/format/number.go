package format

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Price formats v as US dollars, e.g. "$1,234.50" or "-$3.00".
func Price(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", v)
}

// PriceString parses s as a number and formats it with Price.
func PriceString(s string) (string, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("parse price %q: %w", s, err)
	}
	return Price(v), nil
}

// Date formats t like "March 7, 2024".
func Date(t time.Time) string {
	return t.Format("January 2, 2006")
}

// SizeType picks the unit labels used by Bytes.
type SizeType int

const (
	// SizeNormal labels powers of 1024 as KB, MB, GB, TB.
	SizeNormal SizeType = iota
	// SizeAccurate labels powers of 1024 as KiB, MiB, GiB, TiB.
	SizeAccurate
)

var (
	normalSizes   = []string{"Bytes", "KB", "MB", "GB", "TB"}
	accurateSizes = []string{"Bytes", "KiB", "MiB", "GiB", "TiB"}
)

// Bytes renders n in powers of 1024 with the given number of decimals.
// Zero is "0 Byte". Sizes past the last label keep the scaled number but
// fall back to a bytes label.
func Bytes(n int64, decimals int, sizeType SizeType) string {
	if n == 0 {
		return "0 Byte"
	}
	if decimals < 0 {
		decimals = 0
	}

	abs := uint64(n)
	if n < 0 {
		abs = uint64(-n)
	}
	i := (bits.Len64(abs) - 1) / 10

	value := float64(n) / math.Pow(1024, float64(i))
	// Halves round away from zero; FormatFloat alone rounds them to even.
	p := math.Pow(10, float64(decimals))
	value = math.Round(value*p) / p
	return strconv.FormatFloat(value, 'f', decimals, 64) + " " + sizeLabel(i, sizeType)
}

func sizeLabel(i int, sizeType SizeType) string {
	if sizeType == SizeAccurate {
		if i < len(accurateSizes) {
			return accurateSizes[i]
		}
		return "Bytest"
	}
	if i < len(normalSizes) {
		return normalSizes[i]
	}
	return "Bytes"
}
