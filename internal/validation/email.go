// Package validation holds the input validators shared by the auth and
// catalog services: institutional email, password policy, contact phone,
// and image payload limits.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultDomain is the institutional domain used when no override is
// configured.
const DefaultDomain = "cua.uam.mx"

// EmailPattern builds the registration pattern for the given institutional
// domain: local part of word characters plus ._%+-, then @domain.
func EmailPattern(domain string) *regexp.Regexp {
	return regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@` + regexp.QuoteMeta(domain) + `$`)
}

// NormalizeEmail lowercases and trims an address. Emails are compared and
// stored in this normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that the normalized address belongs to the
// institutional domain.
func ValidateEmail(email, domain string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("el correo es obligatorio")
	}
	if len(email) > 254 {
		return fmt.Errorf("el correo es demasiado largo")
	}
	if !EmailPattern(domain).MatchString(email) {
		return fmt.Errorf("el correo debe ser institucional (@%s)", domain)
	}
	return nil
}
