package adapter

import "strings"

// DefaultLicenseID is used when a declared license matches nothing in the
// lookup table.
const DefaultLicenseID = "other-license-specified"

// licenseIDs maps license names, and license URLs stripped of protocol and
// trailing slash, to catalog license ids.
var licenseIDs = map[string]string{
	"Creative Commons Attribution":                                     "cc-by",
	"Creative Commons Attribution Share-Alike":                         "cc-by-sa",
	"Creative Commons CCZero":                                          "cc-zero",
	"Creative Commons Non-Commercial (Any)":                            "cc-nc",
	"GNU Free Documentation License":                                   "gfdl",
	"License Not Specified":                                            "notspecified",
	"Open Data Commons Attribution License":                            "odc-by",
	"Open Data Commons Open Database License (ODbL)":                   "odc-odbl",
	"Open Data Commons Public Domain Dedication and License (PDDL)":    "odc-pddl",
	"Other (Attribution)":                                              "other-at",
	"Other (Non-Commercial)":                                           "other-nc",
	"Other (Not Open)":                                                 "other-closed",
	"Other (Open)":                                                     "other-open",
	"Other (Public Domain)":                                            "other-pd",
	"UK Open Government Licence (OGL)":                                 "uk-ogl",
	"U.S. Public Domain Works":                                         "us-pd",
	"www.usa.gov/publicdomain/label/1.0":                               "us-pd",
	"creativecommons.org/licenses/by/4.0":                              "cc-by",
	"creativecommons.org/licenses/by-sa/4.0":                           "cc-by-sa",
	"creativecommons.org/publicdomain/zero/1.0":                        "cc-zero",
	"creativecommons.org/licenses/by-nc/4.0":                           "cc-nc",
	"www.gnu.org/copyleft/fdl.html":                                    "gfdl",
	"opendatacommons.org/licenses/by/1-0":                              "odc-by",
	"opendatacommons.org/licenses/odbl":                                "odc-odbl",
	"opendatacommons.org/licenses/pddl":                                "odc-pddl",
	"project-open-data.cio.gov/unknown-license/#v1-legacy/other-at":    "other-at",
	"project-open-data.cio.gov/unknown-license/#v1-legacy/other-nc":    "other-nc",
	"project-open-data.cio.gov/unknown-license/#v1-legacy/other-closed": "other-closed",
	"project-open-data.cio.gov/unknown-license/#v1-legacy/other-open":   "other-open",
	"creativecommons.org/publicdomain/mark/1.0/other-pd":                "other-pd",
	"www.nationalarchives.gov.uk/doc/open-government-licence/version/3": "uk-ogl",
}

// LicenseID resolves a declared license, either a human name or a URL, to
// a catalog license id. URLs are normalized by dropping the http/https
// prefix and any trailing slash before lookup. Unmatched declarations fall
// back to DefaultLicenseID.
func LicenseID(declared string) string {
	key := strings.TrimPrefix(declared, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.TrimRight(key, "/")
	if id, ok := licenseIDs[key]; ok {
		return id
	}
	return DefaultLicenseID
}
