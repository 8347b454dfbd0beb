package datajson

import (
	"regexp"
	"strings"
)

// Value-format patterns for the POD 1.1 metadata rules. The upstream
// schema describes these as ISO 8601 dates and repeating durations, IANA
// media types and OMB code layouts.
var (
	isoDatePattern = regexp.MustCompile(
		`^[0-9]{4}-[0-9]{2}-[0-9]{2}` +
			`(T[0-9]{2}:[0-9]{2}(:[0-9]{2}(\.[0-9]+)?)?(Z|[+-][0-9]{2}:?[0-9]{2})?)?$`)

	durationPattern = regexp.MustCompile(
		`^(R[0-9]*/)?P(([0-9]+(\.[0-9]+)?Y)?([0-9]+(\.[0-9]+)?M)?([0-9]+(\.[0-9]+)?W)?([0-9]+(\.[0-9]+)?D)?)` +
			`(T([0-9]+(\.[0-9]+)?H)?([0-9]+(\.[0-9]+)?M)?([0-9]+(\.[0-9]+)?S)?)?$`)

	ianaMIMEPattern = regexp.MustCompile(`^[-\w]+/[-\w]+(\.[-\w]+)*(\+[-\w]+)?$`)

	programCodePattern = regexp.MustCompile(`^[0-9]{3}:[0-9]{3}$`)

	investmentUIIPattern = regexp.MustCompile(`^[0-9]{3}-[0-9]{9}$`)

	redactedPattern = regexp.MustCompile(`^\[\[REDACTED.*\]\]`)
)

// validModified accepts an ISO date or date-time, or a repeating duration
// such as R/P1M.
func validModified(s string) bool {
	return isoDatePattern.MatchString(s) || durationPattern.MatchString(s)
}

// validIssued accepts an ISO date or date-time.
func validIssued(s string) bool {
	return isoDatePattern.MatchString(s)
}

// validTemporalRange accepts two parts separated by a forward slash, each
// an ISO date-time or a duration, with at least one concrete date.
func validTemporalRange(s string) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return false
	}
	partOK := func(p string) bool {
		return isoDatePattern.MatchString(p) || durationPattern.MatchString(p)
	}
	if !partOK(parts[0]) || !partOK(parts[1]) {
		return false
	}
	return isoDatePattern.MatchString(parts[0]) || isoDatePattern.MatchString(parts[1])
}
