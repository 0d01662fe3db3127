package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"path"
	"time"
)

// RootPath is the implicit repository root. It is never stored.
const RootPath = "/"

// Kind identifies the document variant stored in a row
type Kind string

const (
	KindGeneric                 Kind = "generic"
	KindStaticContent           Kind = "static_content"
	KindRoute                   Kind = "route"
	KindContainerBlock          Kind = "container_block"
	KindSimpleBlock             Kind = "simple_block"
	KindMultilangSimpleBlock    Kind = "multilang_simple_block"
	KindMultilangContainerBlock Kind = "multilang_container_block"
	KindReferenceBlock          Kind = "reference_block"
)

// Translatable reports whether documents of this kind keep per-locale field values
func (k Kind) Translatable() bool {
	switch k {
	case KindStaticContent, KindMultilangSimpleBlock, KindMultilangContainerBlock:
		return true
	}
	return false
}

// IsBlock reports whether the kind is one of the block variants
func (k Kind) IsBlock() bool {
	switch k {
	case KindContainerBlock, KindSimpleBlock, KindMultilangSimpleBlock,
		KindMultilangContainerBlock, KindReferenceBlock:
		return true
	}
	return false
}

// Translated field names
const (
	FieldTitle    = "title"
	FieldBody     = "body"
	FieldBodyHTML = "body_html"
)

// Settings holds free-form block settings such as the template
type Settings map[string]string

func (s Settings) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Settings) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Settings{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported settings type %T", src)
	}
	out := Settings{}
	if len(raw) > 0 {
		err := json.Unmarshal(raw, &out)
		if err != nil {
			return err
		}
	}
	*s = out
	return nil
}

type Document struct {
	ID             string    `db:"id"`
	ParentID       *string   `db:"parent_id"`
	Path           string    `db:"path"`
	Name           string    `db:"name"`
	Kind           Kind      `db:"kind"`
	Locale         string    `db:"locale"`
	Title          string    `db:"title"`
	Body           string    `db:"body"`
	BodyHTML       string    `db:"body_html"`
	Settings       Settings  `db:"settings"`
	RouteContentID *string   `db:"route_content_id"`
	Position       int       `db:"position"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`

	// In-memory links, resolved by the store on persist
	Parent    *Document   `db:"-"`
	Content   *Document   `db:"-"` // route target
	InfoBlock *Document   `db:"-"` // additionalInfoBlock child slot
	Children  []*Document `db:"-"`
}

// NewDocument creates an unmanaged document of the given kind below parent
func NewDocument(kind Kind, name string, parent *Document) *Document {
	return &Document{
		Kind:     kind,
		Name:     name,
		Parent:   parent,
		Settings: Settings{},
	}
}

// SetSetting stores a named setting on the document
func (d *Document) SetSetting(key, value string) {
	if d.Settings == nil {
		d.Settings = Settings{}
	}
	d.Settings[key] = value
}

// Setting returns a named setting
func (d *Document) Setting(key string) (string, bool) {
	v, ok := d.Settings[key]
	return v, ok
}

// ChildPath returns the path a child with the given name would have
func (d *Document) ChildPath(name string) string {
	return path.Join(d.Path, name)
}

// IsRoot reports whether the document is the implicit repository root
func (d *Document) IsRoot() bool {
	return d.Path == RootPath
}

// TranslatedFields returns the non-empty field values a translation captures
func (d *Document) TranslatedFields() map[string]string {
	fields := make(map[string]string, 3)
	if d.Title != "" {
		fields[FieldTitle] = d.Title
	}
	if d.Body != "" {
		fields[FieldBody] = d.Body
	}
	if d.BodyHTML != "" {
		fields[FieldBodyHTML] = d.BodyHTML
	}
	return fields
}

// ForLocale returns a copy of the document that shares its identity but has
// no translated field values set, ready to receive one locale's overlay.
func (d *Document) ForLocale(locale string) *Document {
	view := *d
	view.Locale = locale
	view.Title = ""
	view.Body = ""
	view.BodyHTML = ""
	return &view
}
