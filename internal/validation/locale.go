package validation

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

var (
	ErrLocaleInvalid     = errors.New("locale is invalid")
	ErrLocaleUnavailable = errors.New("locale is not available")
)

// ValidateLocale checks that locale is a well-formed BCP 47 tag and, when
// available is non-empty, that it matches one of the available locales.
// It returns the canonical form of the tag.
func ValidateLocale(locale string, available []string) (string, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrLocaleInvalid, locale, err)
	}

	if len(available) == 0 {
		return tag.String(), nil
	}

	for _, a := range available {
		at, err := language.Parse(a)
		if err != nil {
			continue
		}
		if at == tag {
			return tag.String(), nil
		}
	}

	return "", fmt.Errorf("%w: %q (available: %v)", ErrLocaleUnavailable, locale, available)
}
