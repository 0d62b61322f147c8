package postgres

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
)

var countryCode = regexp.MustCompile(`^[a-z]{2}$`)

// countryTable returns the quoted name of a per-country source table, e.g.
// driver_location_updates_sg.
func countryTable(base, country string) (string, error) {
	cc := strings.ToLower(strings.TrimSpace(country))
	if !countryCode.MatchString(cc) {
		return "", fmt.Errorf("invalid country code %q", country)
	}
	return pgx.Identifier{base + "_" + cc}.Sanitize(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
