package fixture

import (
	"strings"

	"github.com/templui/sitefixtures/internal/model"
)

var blockKinds = map[string]model.Kind{
	"container":           model.KindContainerBlock,
	"simple":              model.KindSimpleBlock,
	"multilang_simple":    model.KindMultilangSimpleBlock,
	"multilang_container": model.KindMultilangContainerBlock,
	"reference":           model.KindReferenceBlock,
}

// Class names used by existing fixture files
var blockClassAliases = map[string]string{
	`Symfony\Cmf\Bundle\BlockBundle\Document\ContainerBlock`:          "container",
	`Symfony\Cmf\Bundle\BlockBundle\Document\SimpleBlock`:             "simple",
	`Symfony\Cmf\Bundle\BlockBundle\Document\MultilangSimpleBlock`:    "multilang_simple",
	`Symfony\Cmf\Bundle\BlockBundle\Document\MultilangContainerBlock`: "multilang_container",
	`Symfony\Cmf\Bundle\BlockBundle\Document\ReferenceBlock`:          "reference",
}

// blockKind resolves a block type tag. An empty tag selects def.
func blockKind(name, tag string, def model.Kind) (model.Kind, error) {
	if tag == "" {
		return def, nil
	}

	normalized := strings.TrimPrefix(strings.TrimSpace(tag), `\`)
	if alias, ok := blockClassAliases[normalized]; ok {
		normalized = alias
	}

	kind, ok := blockKinds[strings.ToLower(normalized)]
	if !ok {
		return "", &UnknownBlockTypeError{Name: name, Tag: tag}
	}
	return kind, nil
}

// BodyRenderer turns a body into HTML stored alongside it
type BodyRenderer interface {
	Render(source string) (string, error)
}

type fieldSetter func(doc *model.Document, value string) error

// setterRegistry maps document kinds to the fields they accept
type setterRegistry map[model.Kind]map[string]fieldSetter

func newSetterRegistry(renderer BodyRenderer) setterRegistry {
	setTitle := func(doc *model.Document, value string) error {
		doc.Title = value
		return nil
	}
	setBody := func(doc *model.Document, value string) error {
		doc.Body = value
		if renderer == nil {
			return nil
		}
		html, err := renderer.Render(value)
		if err != nil {
			return err
		}
		doc.BodyHTML = html
		return nil
	}

	titleAndBody := map[string]fieldSetter{
		model.FieldTitle: setTitle,
		model.FieldBody:  setBody,
	}

	return setterRegistry{
		model.KindStaticContent:           titleAndBody,
		model.KindSimpleBlock:             titleAndBody,
		model.KindMultilangSimpleBlock:    titleAndBody,
		model.KindMultilangContainerBlock: {model.FieldTitle: setTitle},
	}
}

func (r setterRegistry) setter(kind model.Kind, field string) (fieldSetter, error) {
	set, ok := r[kind][field]
	if !ok {
		return nil, &UnknownFieldError{Kind: kind, Field: field}
	}
	return set, nil
}

func (r setterRegistry) apply(doc *model.Document, field, value string) error {
	set, err := r.setter(doc.Kind, field)
	if err != nil {
		return err
	}
	return set(doc, value)
}
