package fixture

import (
	"fmt"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// InfoBlockName is the child slot name of a page's additional info block
const InfoBlockName = "additionalInfoBlock"

// LocaleValue is one entry of a locale-keyed field
type LocaleValue struct {
	Locale string
	Value  string
}

// LocalizedValue is a field given either as a single scalar or as a mapping
// of locale to value. Mapping order is kept.
type LocalizedValue struct {
	set       bool
	localized bool
	Scalar    string
	Locales   []LocaleValue
}

// Text returns a scalar value
func Text(s string) LocalizedValue {
	return LocalizedValue{set: true, Scalar: s}
}

// Localized returns a locale-keyed value from alternating locale, value pairs
func Localized(pairs ...string) LocalizedValue {
	v := LocalizedValue{set: true, localized: true}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Locales = append(v.Locales, LocaleValue{Locale: pairs[i], Value: pairs[i+1]})
	}
	return v
}

func (v LocalizedValue) IsSet() bool       { return v.set }
func (v LocalizedValue) IsLocalized() bool { return v.set && v.localized }

func (v *LocalizedValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*v = LocalizedValue{}
			return nil
		}
		*v = Text(node.Value)
		return nil

	case yaml.MappingNode:
		pairs, err := mappingPairs(node)
		if err != nil {
			return err
		}

		out := LocalizedValue{set: true, localized: true}
		seen := make(map[string]string, len(pairs))
		for _, p := range pairs {
			key, value := p.key, p.value
			canonical := canonicalLocale(key.Value)
			if first, ok := seen[canonical]; ok {
				return fmt.Errorf("line %d: locale %q defined twice (as %q)", key.Line, key.Value, first)
			}
			seen[canonical] = key.Value

			if value.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: value for locale %q must be a scalar", value.Line, key.Value)
			}
			if value.ShortTag() == "!!null" {
				continue
			}
			out.Locales = append(out.Locales, LocaleValue{Locale: key.Value, Value: value.Value})
		}
		*v = out
		return nil
	}

	return fmt.Errorf("line %d: expected a scalar or a locale mapping", node.Line)
}

// PageSpec describes one page of the fixture file
type PageSpec struct {
	Parent              string         `yaml:"parent"`
	Title               LocalizedValue `yaml:"title"`
	Body                LocalizedValue `yaml:"body"`
	Route               *string        `yaml:"route"`
	AdditionalInfoBlock *BlockSpec     `yaml:"additionalInfoBlock"`
}

// BlockSpec describes a content block and its nested children
type BlockSpec struct {
	Type     string         `yaml:"type"`
	Class    string         `yaml:"class"`
	Template string         `yaml:"template"`
	Title    LocalizedValue `yaml:"title"`
	Body     LocalizedValue `yaml:"body"`
	Children BlockSet       `yaml:"children"`
}

// tag returns the block type identifier. Info blocks name it "type" and
// child blocks "class"; either key is accepted with the preferred one winning.
func (b *BlockSpec) tag(preferClass bool) string {
	if preferClass && b.Class != "" {
		return b.Class
	}
	if b.Type != "" {
		return b.Type
	}
	return b.Class
}

type NamedPage struct {
	Name string
	Spec PageSpec
}

type NamedBlock struct {
	Name string
	Spec BlockSpec
}

// PageSet is the ordered top-level mapping of page name to PageSpec
type PageSet []NamedPage

func (s *PageSet) UnmarshalYAML(node *yaml.Node) error {
	var out PageSet
	err := eachPair(node, "page", func(name string, value *yaml.Node) error {
		var spec PageSpec
		err := value.Decode(&spec)
		if err != nil {
			return fmt.Errorf("page %q: %w", name, err)
		}
		out = append(out, NamedPage{Name: name, Spec: spec})
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// BlockSet is an ordered mapping of child name to BlockSpec
type BlockSet []NamedBlock

func (s *BlockSet) UnmarshalYAML(node *yaml.Node) error {
	var out BlockSet
	err := eachPair(node, "block", func(name string, value *yaml.Node) error {
		var spec BlockSpec
		err := value.Decode(&spec)
		if err != nil {
			return fmt.Errorf("block %q: %w", name, err)
		}
		out = append(out, NamedBlock{Name: name, Spec: spec})
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// eachPair walks a mapping node in document order. Null values decode to
// empty specs.
func eachPair(node *yaml.Node, what string, fn func(name string, value *yaml.Node) error) error {
	node = resolveAlias(node)
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of %s name to %s", node.Line, what, what)
	}

	pairs, err := mappingPairs(node)
	if err != nil {
		return fmt.Errorf("%s names: %w", what, err)
	}
	for _, p := range pairs {
		err := fn(p.key.Value, p.value)
		if err != nil {
			return err
		}
	}
	return nil
}

type pair struct {
	key   *yaml.Node
	value *yaml.Node
}

// mappingPairs returns the entries of a mapping with merge keys (<<) expanded.
// Merged entries take the place of the merge key; keys declared in the mapping
// itself win over merged ones, and earlier merge sources win over later ones.
func mappingPairs(node *yaml.Node) ([]pair, error) {
	local := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if isMergeKey(key) {
			continue
		}
		if local[key.Value] {
			return nil, fmt.Errorf("line %d: %q defined twice", key.Line, key.Value)
		}
		local[key.Value] = true
	}

	var out []pair
	merged := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if !isMergeKey(key) {
			out = append(out, pair{key: key, value: value})
			continue
		}

		sources, err := mergeSources(value)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			inherited, err := mappingPairs(src)
			if err != nil {
				return nil, err
			}
			for _, p := range inherited {
				if local[p.key.Value] || merged[p.key.Value] {
					continue
				}
				merged[p.key.Value] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// mergeSources returns the mappings a merge key refers to: one mapping or a
// sequence of mappings, possibly through aliases
func mergeSources(value *yaml.Node) ([]*yaml.Node, error) {
	value = resolveAlias(value)
	switch value.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{value}, nil
	case yaml.SequenceNode:
		sources := make([]*yaml.Node, 0, len(value.Content))
		for _, item := range value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: merge sequence must contain mappings", item.Line)
			}
			sources = append(sources, item)
		}
		return sources, nil
	}
	return nil, fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings", value.Line)
}

func isMergeKey(key *yaml.Node) bool {
	return key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge"
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

// canonicalLocale returns the BCP 47 form of locale so en, EN and en_us style
// spellings compare equal. Unparseable locales are kept as given and rejected
// later by the store.
func canonicalLocale(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}
	return tag.String()
}

// Parse decodes a fixture document. An empty document yields no pages.
func Parse(data []byte) (PageSet, error) {
	var doc yaml.Node
	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	var pages PageSet
	err = doc.Content[0].Decode(&pages)
	if err != nil {
		return nil, err
	}
	return pages, nil
}
