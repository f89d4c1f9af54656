package validation

import (
	"errors"
	"unicode"
)

// ValidatePassword enforces the registration password policy: at least 8
// characters with one lowercase, one uppercase, one digit and one symbol.
// The upper bound is the bcrypt 72-byte input limit; longer passwords
// would be silently truncated by the hasher, so we reject them here.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("la contraseña debe tener al menos 8 caracteres")
	}
	if len(password) > 72 {
		return errors.New("la contraseña no debe exceder 72 caracteres")
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	switch {
	case !hasLower:
		return errors.New("la contraseña debe incluir una minúscula")
	case !hasUpper:
		return errors.New("la contraseña debe incluir una mayúscula")
	case !hasDigit:
		return errors.New("la contraseña debe incluir un número")
	case !hasSymbol:
		return errors.New("la contraseña debe incluir un símbolo")
	}
	return nil
}
