package validation

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Bounds for the request justification text.
const (
	MinJustificationLength = 20
	MaxJustificationLength = 500
)

// PhoneDigits is the exact length of a contact phone number.
const PhoneDigits = 10

// ValidatePhone checks that the contact phone is exactly ten digits.
func ValidatePhone(phone string) error {
	if len(phone) != PhoneDigits {
		return fmt.Errorf("el teléfono debe tener exactamente %d dígitos", PhoneDigits)
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return errors.New("el teléfono solo puede contener dígitos")
		}
	}
	return nil
}

// ValidateJustification checks the length bounds of the free-text
// justification a requester submits. Counted in runes, not bytes, so
// accented text is not penalized.
func ValidateJustification(text string) error {
	n := utf8.RuneCountInString(text)
	if n < MinJustificationLength {
		return fmt.Errorf("la justificación debe tener al menos %d caracteres", MinJustificationLength)
	}
	if n > MaxJustificationLength {
		return fmt.Errorf("la justificación no debe exceder %d caracteres", MaxJustificationLength)
	}
	return nil
}
