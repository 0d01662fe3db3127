package fixture

import (
	"fmt"

	"github.com/templui/sitefixtures/internal/model"
)

// ConfigParseError reports a fixture file that is not valid fixture YAML
type ConfigParseError struct {
	File string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("error while parsing %s: %v", e.File, e.Err)
}

func (e *ConfigParseError) Unwrap() error { return e.Err }

// MissingParentError reports a page whose parent path does not exist
type MissingParentError struct {
	Page string
	Path string
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("parent document %s of page %s not found", e.Path, e.Page)
}

// NotTranslatableError reports locale-keyed fields on a document type
// that cannot hold translations
type NotTranslatableError struct {
	Name string
	Kind model.Kind
}

func (e *NotTranslatableError) Error() string {
	return fmt.Sprintf("block %s isn't translatable (%s)", e.Name, e.Kind)
}

// UnknownBlockTypeError reports a block type tag outside the registry
type UnknownBlockTypeError struct {
	Name string
	Tag  string
}

func (e *UnknownBlockTypeError) Error() string {
	return fmt.Sprintf("block %s has unknown type %q", e.Name, e.Tag)
}

// UnknownFieldError reports a field the document type has no setter for
type UnknownFieldError struct {
	Kind  model.Kind
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s documents have no field %q", e.Kind, e.Field)
}

// StoreError wraps a failure of the document store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
