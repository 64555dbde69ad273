package dimension

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Outcome classifies what happened to a token.
type Outcome int

const (
	// Converted means the token parsed and a converted value was produced.
	// The result may still equal the input (e.g. "0.0"), in which case no
	// substitution is needed.
	Converted Outcome = iota
	// SkippedDegree marks an angular dimension left unchanged.
	SkippedDegree
	// SkippedCallout marks a GD&T count callout such as "4x10".
	SkippedCallout
	// SkippedParse marks a token whose base failed numeric parsing.
	SkippedParse
)

func (o Outcome) String() string {
	switch o {
	case Converted:
		return "converted"
	case SkippedDegree:
		return "degree symbol"
	case SkippedCallout:
		return "count callout"
	case SkippedParse:
		return "parse failure"
	}
	return "unknown"
}

var calloutPattern = regexp.MustCompile(`[0-9][xX][0-9]`)

// Convert classifies a grouped token and converts its base value from
// millimeters to inches, keeping any tolerance suffix verbatim. Skipped
// or unparsable tokens come back unchanged with the reason.
func Convert(token string) (string, Outcome) {
	if strings.Contains(token, "°") {
		return token, SkippedDegree
	}
	if calloutPattern.MatchString(token) {
		return token, SkippedCallout
	}
	base, tolerance := SplitTolerance(token)
	converted, err := ConvertValue(base, "mm", Precision(base))
	if err != nil {
		return token, SkippedParse
	}
	return converted + tolerance, Converted
}

// SplitTolerance separates a token into base number and tolerance
// suffix. The first '+' anywhere wins; failing that, the first '-'.
// A leading sign is therefore indistinguishable from a tolerance
// delimiter and produces an empty base, which fails parsing later.
func SplitTolerance(token string) (base, tolerance string) {
	if i := strings.IndexByte(token, '+'); i >= 0 {
		return token[:i], token[i:]
	}
	if i := strings.IndexByte(token, '-'); i >= 0 {
		return token[:i], token[i:]
	}
	return token, ""
}

// Precision returns the number of digits after the decimal point of the
// base number, or 4 when it has no decimal point.
func Precision(base string) int {
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return len(base) - i - 1
	}
	return 4
}

// ConvertValue converts a metric value string to inches with the given
// number of decimal places. Unit is "mm" or "cm".
func ConvertValue(value, unit string, precision int) (string, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", value, err)
	}
	factor := 25.4
	if strings.EqualFold(unit, "cm") {
		factor = 2.54
	}
	return strconv.FormatFloat(v/factor, 'f', precision, 64), nil
}
