package validation

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var ErrPathInvalid = errors.New("path is invalid")

// ValidatePath validates an absolute, normalized repository path
func ValidatePath(p string) error {
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("%w: %q is not absolute", ErrPathInvalid, p)
	}

	if p != path.Clean(p) {
		return fmt.Errorf("%w: %q is not normalized", ErrPathInvalid, p)
	}

	if p == "/" {
		return nil
	}

	for _, segment := range strings.Split(p[1:], "/") {
		err := ValidateName(segment)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrPathInvalid, p, err)
		}
	}

	return nil
}
