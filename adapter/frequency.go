package adapter

import "strings"

type frequencyEntry struct {
	term string
	code string
}

// accrualFrequencies maps human accrual-periodicity terms to ISO 8601
// repeating-duration codes. Order matters: the reverse lookup is built by
// walking the table forward with later entries overwriting earlier ones,
// so duplicated codes resolve to the last term listed.
var accrualFrequencies = []frequencyEntry{
	{"decennial", "R/P10Y"},
	{"quadrennial", "R/P4Y"},
	{"annual", "R/P1Y"},
	{"bimonthly", "R/P2M"},
	{"semiweekly", "R/P3.5D"},
	{"daily", "R/P1D"},
	{"biweekly", "R/P2W"},
	{"semiannual", "R/P6M"},
	{"biennial", "R/P2Y"},
	{"triennial", "R/P3Y"},
	{"three times a week", "R/P0.33W"},
	{"three times a month", "R/P0.33M"},
	{"continuously updated", "R/PT1S"},
	{"monthly", "R/P1M"},
	{"quarterly", "R/P3M"},
	{"every five years", "R/P5Y"},
	{"every eight years", "R/P8Y"},
	{"semimonthly", "R/P0.5M"},
	{"three times a year", "R/P4M"},
	{"weekly", "R/P1W"},
	{"hourly", "R/PT1H"},
	{"continual", "R/PT1S"},
	{"fortnightly", "R/P0.5M"},
	{"annually", "R/P1Y"},
	{"biannualy", "R/P0.5Y"},
	{"completely irregular", "irregular"},
	{"asneeded", "irregular"},
	{"irregular", "irregular"},
	{"notplanned", "irregular"},
	{"unknown", "irregular"},
	{"not updated", "irregular"},
}

var (
	frequencyByTerm = map[string]string{}
	frequencyByCode = map[string]string{}
)

func init() {
	for _, entry := range accrualFrequencies {
		frequencyByTerm[entry.term] = entry.code
		frequencyByCode[entry.code] = entry.term
	}
}

// AccrualCode resolves a human frequency term (case-insensitive) to its
// ISO repeating-duration code. Unrecognized terms come back unchanged.
func AccrualCode(term string) string {
	if code, ok := frequencyByTerm[strings.ToLower(term)]; ok {
		return code
	}
	return term
}

// AccrualTerm resolves an ISO code back to a human term. For codes shared
// by several terms the last table entry wins, so R/P1Y reads "annually"
// and R/PT1S reads "continual". Unrecognized codes come back unchanged.
func AccrualTerm(code string) string {
	if term, ok := frequencyByCode[code]; ok {
		return term
	}
	return code
}

// AccrualCodes lists the distinct codes a source may legitimately carry,
// in table order.
func AccrualCodes() []string {
	seen := map[string]bool{}
	codes := make([]string, 0, len(accrualFrequencies))
	for _, entry := range accrualFrequencies {
		if seen[entry.code] {
			continue
		}
		seen[entry.code] = true
		codes = append(codes, entry.code)
	}
	return codes
}

// NormalizeFrequency folds the values a source uses to say "we don't know"
// into the single term "unknown": nil, the empty string and "irregular"
// all normalize; every other value passes through untouched.
func NormalizeFrequency(value any) any {
	switch v := value.(type) {
	case nil:
		return "unknown"
	case string:
		if v == "" || strings.EqualFold(v, "irregular") {
			return "unknown"
		}
	}
	return value
}
