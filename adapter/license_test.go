package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLicenseID(t *testing.T) {
	tests := []struct {
		declared string
		want     string
	}{
		{"Creative Commons Attribution", "cc-by"},
		{"https://creativecommons.org/licenses/by/4.0", "cc-by"},
		{"http://creativecommons.org/licenses/by/4.0/", "cc-by"},
		{"https://www.usa.gov/publicdomain/label/1.0/", "us-pd"},
		{"U.S. Public Domain Works", "us-pd"},
		{"http://example.com/my-own-license", "other-license-specified"},
		{"", "other-license-specified"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LicenseID(tt.declared), "declared %q", tt.declared)
	}
}
