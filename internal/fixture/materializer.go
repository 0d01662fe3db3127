package fixture

import (
	"context"
	"errors"
	"log/slog"

	"github.com/templui/sitefixtures/internal/model"
	"github.com/templui/sitefixtures/internal/store"
)

// Store is the narrow write interface of the hierarchical document store
type Store interface {
	Find(ctx context.Context, path string) (*model.Document, error)
	Persist(ctx context.Context, doc *model.Document) error
	BindTranslation(ctx context.Context, doc *model.Document, locale string) error
	Flush(ctx context.Context) error
	DefaultLocale() string
}

// Roots are the base paths fixtures are created under
type Roots struct {
	Routes  string
	Content string
	Menu    string
}

// Stats counts what a materialization created
type Stats struct {
	Pages        int
	Routes       int
	Blocks       int
	Translations int
}

// Materializer turns a PageSet into persisted pages, routes and blocks
type Materializer struct {
	store   Store
	roots   Roots
	locale  string
	setters setterRegistry
	log     *slog.Logger
	stats   Stats
}

// NewMaterializer creates a Materializer. An empty defaultLocale falls back to
// the store's default locale; renderer may be nil. The locale is stored in
// the same canonical form as translation locales.
func NewMaterializer(s Store, roots Roots, defaultLocale string, renderer BodyRenderer, log *slog.Logger) *Materializer {
	if log == nil {
		log = slog.Default()
	}
	if defaultLocale == "" {
		defaultLocale = s.DefaultLocale()
	}
	return &Materializer{
		store:   s,
		roots:   roots,
		locale:  canonicalLocale(defaultLocale),
		setters: newSetterRegistry(renderer),
		log:     log,
	}
}

func (m *Materializer) Stats() Stats {
	return m.stats
}

// Materialize creates every page of pages in declaration order and returns
// them. The first error aborts the pass; nothing is flushed after it.
func (m *Materializer) Materialize(ctx context.Context, pages PageSet) ([]*model.Document, error) {
	contentRoot, err := m.store.Find(ctx, m.roots.Content)
	if err != nil {
		return nil, storeErr("find content root "+m.roots.Content, err)
	}
	routeRoot, err := m.store.Find(ctx, m.roots.Routes)
	if err != nil {
		return nil, storeErr("find route root "+m.roots.Routes, err)
	}

	created := make([]*model.Document, 0, len(pages))
	for _, p := range pages {
		page, err := m.materializePage(ctx, p.Name, &p.Spec, contentRoot, routeRoot)
		if err != nil {
			return created, err
		}
		created = append(created, page)
	}

	err = m.store.Flush(ctx)
	if err != nil {
		return created, storeErr("flush", err)
	}
	return created, nil
}

func (m *Materializer) materializePage(ctx context.Context, name string, spec *PageSpec, contentRoot, routeRoot *model.Document) (*model.Document, error) {
	parent := contentRoot
	if spec.Parent != "" {
		found, err := m.store.Find(ctx, spec.Parent)
		if errors.Is(err, store.ErrNotFound) {
			return nil, &MissingParentError{Page: name, Path: spec.Parent}
		}
		if err != nil {
			return nil, storeErr("find parent "+spec.Parent, err)
		}
		parent = found
	}

	page := model.NewDocument(model.KindStaticContent, name, parent)
	page.Locale = m.locale

	ov := &overlay{}
	err := m.bindField(page, name, model.FieldTitle, spec.Title, ov)
	if err != nil {
		return nil, err
	}
	err = m.bindField(page, name, model.FieldBody, spec.Body, ov)
	if err != nil {
		return nil, err
	}

	if spec.Route != nil {
		route := model.NewDocument(model.KindRoute, routeName(*spec.Route), routeRoot)
		route.Content = page
		err = m.store.Persist(ctx, route)
		if err != nil {
			return nil, storeErr("persist route "+route.Name, err)
		}
		m.stats.Routes++
	}

	if spec.AdditionalInfoBlock != nil {
		err = m.materializeInfoBlock(ctx, page, spec.AdditionalInfoBlock)
		if err != nil {
			return nil, err
		}
	}

	err = m.store.Persist(ctx, page)
	if err != nil {
		return nil, storeErr("persist page "+name, err)
	}
	m.stats.Pages++

	err = m.applyOverlay(ctx, page, ov)
	if err != nil {
		return nil, err
	}

	m.log.Debug("page created", "page", name, "path", page.Path, "locales", ov.locales)
	return page, nil
}

// materializeInfoBlock creates the page's info block slot. The block is
// flushed before its children so they can reference it.
func (m *Materializer) materializeInfoBlock(ctx context.Context, page *model.Document, spec *BlockSpec) error {
	kind, err := blockKind(InfoBlockName, spec.tag(false), model.KindContainerBlock)
	if err != nil {
		return err
	}

	block := model.NewDocument(kind, InfoBlockName, page)
	page.InfoBlock = block

	ov, err := m.bindBlockFields(block, InfoBlockName, spec)
	if err != nil {
		return err
	}

	err = m.store.Persist(ctx, block)
	if err != nil {
		return storeErr("persist info block of "+page.Name, err)
	}
	err = m.store.Flush(ctx)
	if err != nil {
		return storeErr("flush info block of "+page.Name, err)
	}
	m.stats.Blocks++

	err = m.applyOverlay(ctx, block, ov)
	if err != nil {
		return err
	}

	if len(spec.Children) > 0 {
		block.Children, err = m.processChildren(ctx, block, spec.Children)
		if err != nil {
			return err
		}
	}
	return nil
}

// processChildren creates the child blocks of parent in declaration order,
// recursing into nested children, and returns the ordered collection.
func (m *Materializer) processChildren(ctx context.Context, parent *model.Document, children BlockSet) ([]*model.Document, error) {
	collection := make([]*model.Document, 0, len(children))

	for i := range children {
		name, spec := children[i].Name, &children[i].Spec

		kind, err := blockKind(name, spec.tag(true), model.KindSimpleBlock)
		if err != nil {
			return nil, err
		}

		block := model.NewDocument(kind, name, parent)

		ov, err := m.bindBlockFields(block, name, spec)
		if err != nil {
			return nil, err
		}

		err = m.store.Persist(ctx, block)
		if err != nil {
			return nil, storeErr("persist block "+name, err)
		}
		m.stats.Blocks++

		err = m.applyOverlay(ctx, block, ov)
		if err != nil {
			return nil, err
		}

		if len(spec.Children) > 0 {
			block.Children, err = m.processChildren(ctx, block, spec.Children)
			if err != nil {
				return nil, err
			}
		}

		collection = append(collection, block)
	}

	return collection, nil
}

func (m *Materializer) bindBlockFields(block *model.Document, name string, spec *BlockSpec) (*overlay, error) {
	if spec.Template != "" {
		block.SetSetting("template", spec.Template)
	}

	ov := &overlay{}
	err := m.bindField(block, name, model.FieldTitle, spec.Title, ov)
	if err != nil {
		return nil, err
	}
	err = m.bindField(block, name, model.FieldBody, spec.Body, ov)
	if err != nil {
		return nil, err
	}
	return ov, nil
}

// bindField sets a scalar value directly or defers a locale-keyed value
// into ov
func (m *Materializer) bindField(doc *model.Document, name, field string, value LocalizedValue, ov *overlay) error {
	if !value.IsSet() {
		return nil
	}

	if !value.IsLocalized() {
		return m.setters.apply(doc, field, value.Scalar)
	}

	if !doc.Kind.Translatable() {
		return &NotTranslatableError{Name: name, Kind: doc.Kind}
	}
	_, err := m.setters.setter(doc.Kind, field)
	if err != nil {
		return err
	}

	for _, lv := range value.Locales {
		ov.add(lv.Locale, field, lv.Value)
	}
	return nil
}

// applyOverlay sets each locale's deferred values on a locale view of doc
// and binds it as that locale's translation
func (m *Materializer) applyOverlay(ctx context.Context, doc *model.Document, ov *overlay) error {
	for _, locale := range ov.locales {
		view := doc.ForLocale(locale)
		for _, fv := range ov.values[locale] {
			err := m.setters.apply(view, fv.field, fv.value)
			if err != nil {
				return err
			}
		}

		err := m.store.BindTranslation(ctx, view, locale)
		if err != nil {
			return storeErr("bind "+locale+" translation of "+doc.Name, err)
		}
		m.stats.Translations++
	}
	return nil
}

func routeName(slug string) string {
	if slug == "/" {
		return "home"
	}
	return slug
}

type fieldValue struct {
	field string
	value string
}

// overlay collects deferred field values per locale in first-seen order
type overlay struct {
	locales []string
	values  map[string][]fieldValue
}

func (o *overlay) add(locale, field, value string) {
	if o.values == nil {
		o.values = make(map[string][]fieldValue)
	}
	if _, ok := o.values[locale]; !ok {
		o.locales = append(o.locales, locale)
	}
	o.values[locale] = append(o.values[locale], fieldValue{field: field, value: value})
}
