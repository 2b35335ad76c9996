package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sjsage522/travelworker/helpers"
)

var (
	numericRun = regexp.MustCompile(`\d+(?:\.\d+)?`)
	hourRun    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|시간)`)
	minuteRun  = regexp.MustCompile(`(\d+)\s*(?:minutes?|mins?|분)`)
	dayRun     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:days?|일)`)
)

// CleanPrice strips currency symbols and grouping punctuation and returns
// the leading numeric run. "29,600원" becomes "29600"; an input with no
// digits returns "".
func CleanPrice(raw string) string {
	s := strings.NewReplacer(",", "", " ", "", " ", "").Replace(raw)
	return numericRun.FindString(s)
}

// CleanRating parses a rating and rescales it to 0..5. Sources publish on
// 5, 10 or 100 point scales; the scale is inferred from the magnitude.
// Values outside 0..100 are rejected.
func CleanRating(raw string) (string, error) {
	s := numericRun.FindString(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return "", fmt.Errorf("no numeric rating in %q", raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", err
	}
	if v < 0 || v > 100 {
		return "", fmt.Errorf("rating %v outside 0..100", v)
	}
	scale := 5.0
	switch {
	case v > 10:
		scale = 100
	case v > 5:
		scale = 10
	}
	return strconv.FormatFloat(v*5/scale, 'f', 2, 64), nil
}

// CleanReviewCount extracts the first contiguous digit run, commas
// stripped. "(1,234 reviews)" becomes 1234; no digits means 0.
func CleanReviewCount(raw string) int {
	s := helpers.FirstDigits(raw)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// DurationHours parses a human duration label into decimal hours.
// "half day" counts as 4 hours and "full day" as 8; otherwise hour,
// minute and day components are summed. A bare number reads as hours.
func DurationHours(raw string) float64 {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	if strings.Contains(s, "half day") || strings.Contains(s, "half-day") || strings.Contains(s, "반나절") {
		return 4
	}
	if strings.Contains(s, "full day") || strings.Contains(s, "full-day") || strings.Contains(s, "종일") {
		return 8
	}

	total := 0.0
	if m := dayRun.FindStringSubmatch(s); m != nil {
		d, _ := strconv.ParseFloat(m[1], 64)
		total += d * 8
	}
	if m := hourRun.FindStringSubmatch(s); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		total += h
	}
	if m := minuteRun.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.ParseFloat(m[1], 64)
		total += mins / 60
	}
	if total > 0 {
		return total
	}
	if n := numericRun.FindString(s); n != "" {
		h, _ := strconv.ParseFloat(n, 64)
		return h
	}
	return 0
}
