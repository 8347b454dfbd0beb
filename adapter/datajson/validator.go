package datajson

import (
	"fmt"
	"net/mail"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/opendataio/harvester/adapter"
)

// Severity levels attached to validation findings. Lower is worse.
const (
	SeverityInvalidRequired = 5
	SeverityMissingRequired = 10
	SeverityInvalidOptional = 50
	SeverityShortValue      = 100
)

// Finding headings.
const (
	headingInvalidRequired = "Invalid Required Field Value"
	headingMissingRequired = "Missing Required Fields"
	headingInvalidOptional = "Invalid Field Value (Optional Fields)"
	headingInvalidValue    = "Invalid Field Value"
	headingUpdateYourFile  = "Update Your File!"
)

// FindingGroup is one severity/heading bucket of validation findings, with
// deduplicated descriptions ordered most-frequent first.
type FindingGroup struct {
	Severity     int
	Heading      string
	Descriptions []string
}

// Validator checks data.json dataset records against the POD 1.1 metadata
// rules. BureauCodes holds the known "agency:bureau" pairs; when nil the
// known-code membership check is skipped.
type Validator struct {
	BureauCodes map[string]bool
}

type findingKey struct {
	severity int
	heading  string
}

// findings collects problems keyed by severity and heading, deduplicating
// descriptions and remembering the distinct contexts each occurred in.
type findings map[findingKey]map[string]map[string]bool

func (f findings) add(severity int, heading, description, context string) {
	key := findingKey{severity: severity, heading: heading}
	byDescription := f[key]
	if byDescription == nil {
		byDescription = map[string]map[string]bool{}
		f[key] = byDescription
	}
	contexts := byDescription[description]
	if contexts == nil {
		contexts = map[string]bool{}
		byDescription[description] = contexts
	}
	if context != "" {
		contexts[context] = true
	}
}

// groups renders the collected findings sorted by severity then heading.
// Descriptions inside a group are ordered by occurrence count descending,
// ties alphabetically, and annotated with their location count when a
// description occurred in more than one place.
func (f findings) groups() []FindingGroup {
	keys := make([]findingKey, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].severity != keys[j].severity {
			return keys[i].severity < keys[j].severity
		}
		return keys[i].heading < keys[j].heading
	})

	groups := make([]FindingGroup, 0, len(keys))
	for _, key := range keys {
		byDescription := f[key]
		descriptions := make([]string, 0, len(byDescription))
		for description := range byDescription {
			descriptions = append(descriptions, description)
		}
		sort.Slice(descriptions, func(i, j int) bool {
			ci, cj := len(byDescription[descriptions[i]]), len(byDescription[descriptions[j]])
			if ci != cj {
				return ci > cj
			}
			return descriptions[i] < descriptions[j]
		})
		for i, description := range descriptions {
			if n := len(byDescription[description]); n > 1 {
				descriptions[i] = fmt.Sprintf("%s (%d locations)", description, n)
			}
		}
		groups = append(groups, FindingGroup{
			Severity:     key.severity,
			Heading:      key.heading,
			Descriptions: descriptions,
		})
	}
	return groups
}

// ValidateDataset checks one dataset record and returns its findings,
// empty when the record is clean.
func (v *Validator) ValidateDataset(item map[string]any) []FindingGroup {
	errs := findings{}
	context := strings.TrimSpace(stringField(item, "identifier"))

	// title
	if v.checkRequiredStringField(errs, item, "title", 2, context) {
		context = strings.TrimSpace(stringField(item, "title"))
	}

	// accessLevel
	if v.checkRequiredStringField(errs, item, "accessLevel", 3, context) {
		switch item["accessLevel"] {
		case "public", "restricted public", "non-public":
		default:
			errs.add(SeverityInvalidRequired, headingInvalidRequired,
				fmt.Sprintf("The field 'accessLevel' had an invalid value: %q", item["accessLevel"]), context)
		}
	}

	v.checkBureauCode(errs, item, context)
	v.checkContactPoint(errs, item, context)

	v.checkRequiredStringField(errs, item, "description", 1, context)
	v.checkRequiredStringField(errs, item, "identifier", 1, context)

	v.checkKeyword(errs, item, context)

	// modified
	if v.checkRequiredStringField(errs, item, "modified", 1, context) {
		modified := stringField(item, "modified")
		if !isRedacted(modified) && !validModified(modified) {
			errs.add(SeverityInvalidRequired, headingInvalidRequired,
				fmt.Sprintf("The field \"modified\" is not in valid format: %q", modified), context)
		}
	}

	v.checkProgramCode(errs, item, context)

	// publisher
	if v.checkRequiredField(errs, item, "publisher", kindObject, context) {
		publisher := item["publisher"].(map[string]any)
		v.checkRequiredStringField(errs, publisher, "name", 1, context)
	}

	// dataQuality
	if value := item["dataQuality"]; value != nil && !isRedacted(value) {
		if _, ok := value.(bool); !ok {
			errs.add(SeverityInvalidOptional, headingInvalidOptional,
				"The field 'dataQuality' must be true or false, "+
					"as a JSON boolean literal (not the string \"true\" or \"false\").", context)
		}
	}

	v.checkDistribution(errs, item, context)

	v.checkURLField(errs, item, "license", context)

	// spatial
	if value := item["spatial"]; value != nil {
		if _, ok := value.(string); !ok {
			errs.add(SeverityInvalidOptional, headingInvalidOptional,
				"The field 'spatial' must be a string value if specified.", context)
		}
	}

	v.checkTemporal(errs, item, context)

	// accrualPeriodicity
	if value, present := item["accrualPeriodicity"]; present && value != nil && !isRedacted(value) {
		s, ok := value.(string)
		if !ok || (s != "" && s != "irregular" && !validAccrualCode(s)) {
			errs.add(SeverityInvalidOptional, headingInvalidOptional,
				"The field 'accrualPeriodicity' had an invalid value.", context)
		}
	}

	v.checkURLField(errs, item, "conformsTo", context)
	v.checkURLField(errs, item, "describedBy", context)
	v.checkMIMEField(errs, item, "describedByType", context)

	// isPartOf
	if item["isPartOf"] != nil {
		v.checkRequiredStringField(errs, item, "isPartOf", 1, context)
	}

	// issued
	if value := item["issued"]; value != nil && !isRedacted(value) {
		if s, ok := value.(string); !ok || !validIssued(s) {
			errs.add(SeverityInvalidOptional, headingInvalidOptional,
				"The field 'issued' is not in a valid format.", context)
		}
	}

	v.checkURLField(errs, item, "landingPage", context)
	v.checkLanguage(errs, item, context)

	// primaryITInvestmentUII
	if value := item["primaryITInvestmentUII"]; value != nil && !isRedacted(value) {
		if s, ok := value.(string); !ok || !investmentUIIPattern.MatchString(s) {
			errs.add(SeverityInvalidOptional, headingInvalidOptional,
				"The field 'primaryITInvestmentUII' must be a string "+
					"in 023-000000001 format, if present.", context)
		}
	}

	v.checkReferences(errs, item, context)
	v.checkURLField(errs, item, "systemOfRecords", context)
	v.checkTheme(errs, item, context)

	return errs.groups()
}

func (v *Validator) checkBureauCode(errs findings, item map[string]any, context string) {
	if isRedacted(item["bureauCode"]) {
		return
	}
	if !v.checkRequiredField(errs, item, "bureauCode", kindArray, context) {
		return
	}
	for _, raw := range item["bureauCode"].([]any) {
		code, ok := raw.(string)
		switch {
		case !ok:
			errs.add(SeverityInvalidRequired, headingInvalidRequired,
				"Each bureauCode must be a string", context)
		case !strings.Contains(code, ":"):
			errs.add(SeverityInvalidRequired, headingInvalidRequired,
				fmt.Sprintf("The bureau code %q is invalid. "+
					"Start with the agency code, then a colon, then the bureau code.", code), context)
		case v.BureauCodes != nil && !v.BureauCodes[code]:
			errs.add(SeverityInvalidRequired, headingInvalidRequired,
				fmt.Sprintf("The bureau code %q was not found in the OMB bureau code list", code), context)
		}
	}
}

func (v *Validator) checkContactPoint(errs findings, item map[string]any, context string) {
	if !v.checkRequiredField(errs, item, "contactPoint", kindObject, context) {
		return
	}
	cp := item["contactPoint"].(map[string]any)
	v.checkRequiredStringField(errs, cp, "fn", 1, context)

	if v.checkRequiredStringField(errs, cp, "hasEmail", 9, context) && !isRedacted(cp["hasEmail"]) {
		email := strings.TrimPrefix(stringField(cp, "hasEmail"), "mailto:")
		if _, err := mail.ParseAddress(email); err != nil {
			errs.add(SeverityInvalidRequired, headingInvalidRequired,
				fmt.Sprintf("The email address %q is not a valid email address.", email), context)
		}
	}
}

func (v *Validator) checkKeyword(errs findings, item map[string]any, context string) {
	if s, ok := item["keyword"].(string); ok {
		if !isRedacted(s) {
			errs.add(SeverityInvalidRequired, headingUpdateYourFile,
				"The keyword field used to be a string but now it must be an array.", context)
		}
		return
	}
	if !v.checkRequiredField(errs, item, "keyword", kindArray, context) {
		return
	}
	for _, raw := range item["keyword"].([]any) {
		kw, ok := raw.(string)
		switch {
		case !ok:
			errs.add(SeverityInvalidRequired, headingInvalidRequired,
				"Each keyword in the keyword array must be a string", context)
		case strings.TrimSpace(kw) == "":
			errs.add(SeverityInvalidRequired, headingInvalidRequired,
				"A keyword in the keyword array was an empty string.", context)
		}
	}
}

func (v *Validator) checkProgramCode(errs findings, item map[string]any, context string) {
	if isRedacted(item["programCode"]) {
		return
	}
	if !v.checkRequiredField(errs, item, "programCode", kindArray, context) {
		return
	}
	for _, raw := range item["programCode"].([]any) {
		code, ok := raw.(string)
		switch {
		case !ok:
			errs.add(SeverityInvalidRequired, headingInvalidRequired,
				"Each programCode in the programCode array must be a string", context)
		case !programCodePattern.MatchString(code):
			errs.add(SeverityInvalidOptional, headingInvalidOptional,
				fmt.Sprintf("One of programCodes is not in valid format (ex. 018:001): %q", code), context)
		}
	}
}

func (v *Validator) checkDistribution(errs findings, item map[string]any, context string) {
	value := item["distribution"]
	if value == nil {
		return
	}
	list, ok := value.([]any)
	if !ok {
		if isRedacted(value) {
			return
		}
		errs.add(SeverityInvalidOptional, headingInvalidOptional,
			"The field 'distribution' must be an array, if present.", context)
		return
	}
	for j, raw := range list {
		if isRedacted(raw) {
			continue
		}
		dt, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		distContext := fmt.Sprintf("%s distribution %d", context, j+1)

		v.checkURLField(errs, dt, "downloadURL", distContext)

		if _, hasDownload := dt["downloadURL"]; hasDownload {
			if v.checkRequiredStringField(errs, dt, "mediaType", 1, distContext) {
				mediaType := stringField(dt, "mediaType")
				if !ianaMIMEPattern.MatchString(mediaType) && !isRedacted(mediaType) {
					errs.add(SeverityInvalidRequired, headingInvalidValue,
						fmt.Sprintf("The distribution mediaType %q is invalid. "+
							"It must be in IANA MIME format.", mediaType), distContext)
				}
			}
		}

		v.checkURLField(errs, dt, "accessURL", distContext)
		v.checkURLField(errs, dt, "conformsTo", distContext)
		v.checkURLField(errs, dt, "describedBy", distContext)
		v.checkMIMEField(errs, dt, "describedByType", distContext)

		for _, field := range []string{"description", "format", "title"} {
			if dt[field] != nil {
				v.checkRequiredStringField(errs, dt, field, 1, distContext)
			}
		}
	}
}

func (v *Validator) checkTemporal(errs findings, item map[string]any, context string) {
	value := item["temporal"]
	if value == nil || isRedacted(value) {
		return
	}
	s, ok := value.(string)
	switch {
	case !ok:
		errs.add(SeverityMissingRequired, headingInvalidOptional,
			"The field 'temporal' must be a string value if specified.", context)
	case !strings.Contains(s, "/"):
		errs.add(SeverityMissingRequired, headingInvalidOptional,
			"The field 'temporal' must be two dates separated by a forward slash.", context)
	case !validTemporalRange(s):
		errs.add(SeverityInvalidOptional, headingInvalidOptional,
			"The field 'temporal' has an invalid start or end date.", context)
	}
}

func (v *Validator) checkLanguage(errs findings, item map[string]any, context string) {
	value := item["language"]
	if value == nil || isRedacted(value) {
		return
	}
	list, ok := value.([]any)
	if !ok {
		errs.add(SeverityInvalidOptional, headingInvalidOptional,
			"The field 'language' must be an array, if present.", context)
		return
	}
	for _, raw := range list {
		s, isString := raw.(string)
		if isString && isRedacted(s) {
			continue
		}
		if _, err := language.Parse(s); !isString || err != nil {
			errs.add(SeverityInvalidOptional, headingInvalidOptional,
				fmt.Sprintf("The field 'language' had an invalid language: %q", raw), context)
		}
	}
}

func (v *Validator) checkReferences(errs findings, item map[string]any, context string) {
	value := item["references"]
	if value == nil {
		return
	}
	list, ok := value.([]any)
	if !ok {
		if isRedacted(value) {
			return
		}
		errs.add(SeverityInvalidOptional, headingInvalidOptional,
			"The field 'references' must be an array, if present.", context)
		return
	}
	for _, raw := range list {
		s, isString := raw.(string)
		if isString && (validURL(s) || isRedacted(s)) {
			continue
		}
		errs.add(SeverityInvalidOptional, headingInvalidOptional,
			fmt.Sprintf("The field 'references' had an invalid URL: %q", raw), context)
	}
}

func (v *Validator) checkTheme(errs findings, item map[string]any, context string) {
	value := item["theme"]
	if value == nil || isRedacted(value) {
		return
	}
	list, ok := value.([]any)
	if !ok {
		errs.add(SeverityInvalidOptional, headingInvalidOptional,
			"The field 'theme' must be an array.", context)
		return
	}
	for _, raw := range list {
		s, isString := raw.(string)
		switch {
		case !isString:
			errs.add(SeverityInvalidOptional, headingInvalidOptional,
				"Each value in the theme array must be a string", context)
		case strings.TrimSpace(s) == "":
			errs.add(SeverityInvalidOptional, headingInvalidOptional,
				"A value in the theme array was an empty string.", context)
		}
	}
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindArray
	kindObject
)

func (k fieldKind) name() string {
	switch k {
	case kindString:
		return "string"
	case kindArray:
		return "array"
	default:
		return "object"
	}
}

func kindOf(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case bool:
		return "boolean"
	case float64, int:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// checkRequiredField reports whether a field exists, is non-null, has the
// right kind and, for arrays, is non-empty.
func (v *Validator) checkRequiredField(errs findings, obj map[string]any, field string, kind fieldKind, context string) bool {
	value, present := obj[field]
	switch {
	case !present:
		errs.add(SeverityMissingRequired, headingMissingRequired,
			fmt.Sprintf("The '%s' field is missing.", field), context)
		return false
	case value == nil:
		errs.add(SeverityMissingRequired, headingMissingRequired,
			fmt.Sprintf("The '%s' field is empty.", field), context)
		return false
	}
	matches := false
	switch kind {
	case kindString:
		_, matches = value.(string)
	case kindArray:
		_, matches = value.([]any)
	case kindObject:
		_, matches = value.(map[string]any)
	}
	if !matches {
		errs.add(SeverityInvalidRequired, headingInvalidRequired,
			fmt.Sprintf("The '%s' field must be a %s but it has a different datatype (%s).",
				field, kind.name(), kindOf(value)), context)
		return false
	}
	if list, ok := value.([]any); ok && len(list) == 0 {
		errs.add(SeverityMissingRequired, headingMissingRequired,
			fmt.Sprintf("The '%s' field is an empty array.", field), context)
		return false
	}
	return true
}

// checkRequiredStringField additionally requires a minimum trimmed length.
func (v *Validator) checkRequiredStringField(errs findings, obj map[string]any, field string, minLength int, context string) bool {
	if !v.checkRequiredField(errs, obj, field, kindString, context) {
		return false
	}
	trimmed := strings.TrimSpace(obj[field].(string))
	switch {
	case len(trimmed) == 0:
		errs.add(SeverityMissingRequired, headingMissingRequired,
			fmt.Sprintf("The '%s' field is present but empty.", field), context)
		return false
	case len(trimmed) < minLength:
		errs.add(SeverityShortValue, headingInvalidValue,
			fmt.Sprintf("The '%s' field is very short (min. %d): %q", field, minLength, obj[field]), context)
		return false
	}
	return true
}

// checkURLField validates an optional field as a URL when present.
// Redacted sentinels pass.
func (v *Validator) checkURLField(errs findings, obj map[string]any, field, context string) bool {
	if value, present := obj[field]; !present || value == nil {
		return true
	}
	if !v.checkRequiredField(errs, obj, field, kindString, context) {
		return false
	}
	s := obj[field].(string)
	if isRedacted(s) {
		return true
	}
	if !validURL(s) {
		errs.add(SeverityInvalidRequired, headingInvalidRequired,
			fmt.Sprintf("The '%s' field has an invalid URL: %q.", field, s), context)
		return false
	}
	return true
}

func (v *Validator) checkMIMEField(errs findings, obj map[string]any, field, context string) {
	value := obj[field]
	if value == nil || isRedacted(value) {
		return
	}
	if s, ok := value.(string); !ok || !ianaMIMEPattern.MatchString(s) {
		errs.add(SeverityInvalidRequired, headingInvalidValue,
			fmt.Sprintf("The %s %q is invalid. It must be in IANA MIME format.", field, value), context)
	}
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

var accrualCodeSet = func() map[string]bool {
	set := map[string]bool{}
	for _, code := range adapter.AccrualCodes() {
		set[code] = true
	}
	return set
}()

func validAccrualCode(s string) bool {
	return accrualCodeSet[s]
}

// isRedacted reports whether a value carries the redaction sentinel used
// by publishers to withhold field contents.
func isRedacted(value any) bool {
	s, ok := value.(string)
	return ok && redactedPattern.MatchString(s)
}
