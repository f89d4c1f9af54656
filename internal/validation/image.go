package validation

import (
	"errors"
	"fmt"
)

// MaxImageBytes caps a single uploaded image at 5MB, measured on the raw
// payload before base64 encoding.
const MaxImageBytes = 5 * 1024 * 1024

// ValidateImage checks that an image payload is present and within the
// size cap. Registration requires a profile image, so empty is an error.
func ValidateImage(data []byte) error {
	if len(data) == 0 {
		return errors.New("la imagen es obligatoria")
	}
	if len(data) > MaxImageBytes {
		return fmt.Errorf("la imagen no debe exceder %dMB", MaxImageBytes/(1024*1024))
	}
	return nil
}
