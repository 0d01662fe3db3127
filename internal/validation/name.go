package validation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameInvalid  = errors.New("name is invalid")
)

// ValidateName validates a document node name
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}

	if name != strings.TrimSpace(name) {
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrNameInvalid, name)
	}

	if strings.ContainsAny(name, "/[]*|") {
		return fmt.Errorf("%w: %q contains a reserved character", ErrNameInvalid, name)
	}

	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrNameInvalid, name)
	}

	if len(name) > 255 {
		return fmt.Errorf("%w: too long (max 255 characters)", ErrNameInvalid)
	}

	return nil
}
