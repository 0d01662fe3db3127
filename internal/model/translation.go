package model

import "time"

type Translation struct {
	DocumentID string    `db:"document_id"`
	Locale     string    `db:"locale"`
	Field      string    `db:"field"`
	Value      string    `db:"value"`
	CreatedAt  time.Time `db:"created_at"`
}

// TreeNode is a read-side view of a document with its translations and children
type TreeNode struct {
	Name         string                       `yaml:"name"`
	Path         string                       `yaml:"path"`
	Kind         Kind                         `yaml:"kind"`
	Locale       string                       `yaml:"locale,omitempty"`
	Title        string                       `yaml:"title,omitempty"`
	Body         string                       `yaml:"body,omitempty"`
	Settings     Settings                     `yaml:"settings,omitempty"`
	Route        string                       `yaml:"route,omitempty"` // path of the routed content
	Translations map[string]map[string]string `yaml:"translations,omitempty"`
	Children     []*TreeNode                  `yaml:"children,omitempty"`
	Parent       *TreeNode                    `yaml:"-"`
}
