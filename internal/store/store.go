// Package store is a unit-of-work document manager over the hierarchical
// document tables. Documents are addressed by absolute path, persisted
// changes are queued and written in one transaction per Flush.
//
// A Manager is not safe for concurrent use.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/templui/sitefixtures/internal/model"
	"github.com/templui/sitefixtures/internal/repository"
	"github.com/templui/sitefixtures/internal/validation"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrNotManaged      = errors.New("document is not managed")
	ErrNotTranslatable = errors.New("document is not translatable")
	ErrDuplicatePath   = errors.New("document path already exists")
	ErrNoParent        = errors.New("document has no parent")
)

type Options struct {
	DefaultLocale    string
	AvailableLocales []string
}

// operation is one queued write; exactly one of doc and translation is set
type operation struct {
	doc         *model.Document
	translation *model.Translation
}

type Manager struct {
	db           *sqlx.DB
	documents    repository.DocumentRepository
	translations repository.TranslationRepository
	opts         Options

	managed   map[string]*model.Document // by path
	byID      map[string]*model.Document
	positions map[string]int // next child position by parent id ("" for top level)
	pending   []operation

	now func() time.Time
}

func New(db *sqlx.DB, documents repository.DocumentRepository, translations repository.TranslationRepository, opts Options) *Manager {
	return &Manager{
		db:           db,
		documents:    documents,
		translations: translations,
		opts:         opts,
		managed:      make(map[string]*model.Document),
		byID:         make(map[string]*model.Document),
		positions:    make(map[string]int),
		now:          time.Now,
	}
}

// DefaultLocale returns the locale the locale chooser falls back to
func (m *Manager) DefaultLocale() string {
	if m.opts.DefaultLocale != "" {
		return m.opts.DefaultLocale
	}
	if len(m.opts.AvailableLocales) > 0 {
		return m.opts.AvailableLocales[0]
	}
	return "en"
}

// Find resolves a path to a document. The repository root "/" always exists.
func (m *Manager) Find(ctx context.Context, path string) (*model.Document, error) {
	err := validation.ValidatePath(path)
	if err != nil {
		return nil, err
	}

	if path == model.RootPath {
		return &model.Document{Path: model.RootPath, Kind: model.KindGeneric}, nil
	}

	doc, ok := m.managed[path]
	if ok {
		return doc, nil
	}

	doc, err = m.documents.ByPath(ctx, path)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", path, err)
	}

	m.attach(doc)
	return doc, nil
}

// CreatePath makes sure every node of path exists, creating generic nodes
// for missing segments. Existing nodes are left untouched.
func (m *Manager) CreatePath(ctx context.Context, path string) (*model.Document, error) {
	err := validation.ValidatePath(path)
	if err != nil {
		return nil, err
	}

	current, err := m.Find(ctx, model.RootPath)
	if err != nil {
		return nil, err
	}
	if path == model.RootPath {
		return current, nil
	}

	for _, segment := range strings.Split(path[1:], "/") {
		next, err := m.Find(ctx, current.ChildPath(segment))
		if errors.Is(err, ErrNotFound) {
			next = model.NewDocument(model.KindGeneric, segment, current)
			err = m.Persist(ctx, next)
		}
		if err != nil {
			return nil, err
		}
		current = next
	}

	return current, nil
}

// Persist schedules the document for writing on the next Flush. Unpersisted
// parents and route targets are persisted first. Persisting a managed
// document again schedules an update with its current values.
func (m *Manager) Persist(ctx context.Context, doc *model.Document) error {
	if doc.IsRoot() {
		return fmt.Errorf("cannot persist the repository root")
	}

	err := validation.ValidateName(doc.Name)
	if err != nil {
		return err
	}

	if doc.Parent == nil {
		return fmt.Errorf("%w: %s", ErrNoParent, doc.Name)
	}

	parent := doc.Parent
	if !parent.IsRoot() && parent.ID == "" {
		err = m.Persist(ctx, parent)
		if err != nil {
			return err
		}
	}

	if doc.Content != nil {
		if doc.Content.ID == "" {
			err = m.Persist(ctx, doc.Content)
			if err != nil {
				return err
			}
		}
		contentID := doc.Content.ID
		doc.RouteContentID = &contentID
	}

	var parentID *string
	if !parent.IsRoot() {
		id := parent.ID
		parentID = &id
	}

	path := parent.ChildPath(doc.Name)

	if doc.ID == "" {
		err = m.checkFreePath(ctx, path)
		if err != nil {
			return err
		}

		position, err := m.nextPosition(ctx, parentID)
		if err != nil {
			return err
		}

		doc.ID = uuid.New().String()
		doc.CreatedAt = m.now().UTC()
		doc.Position = position
	} else if doc.Path != path {
		return fmt.Errorf("cannot move %s to %s", doc.Path, path)
	}

	doc.ParentID = parentID
	doc.Path = path
	doc.UpdatedAt = m.now().UTC()
	m.attach(doc)

	m.pending = append(m.pending, operation{doc: snapshot(doc)})
	slog.Debug("document persisted", "path", path, "kind", doc.Kind)
	return nil
}

// BindTranslation records the translated field values of doc for locale.
// doc may be a locale view (see model.Document.ForLocale) of a managed document.
func (m *Manager) BindTranslation(ctx context.Context, doc *model.Document, locale string) error {
	if _, ok := m.byID[doc.ID]; doc.ID == "" || !ok {
		return fmt.Errorf("%w: %s", ErrNotManaged, doc.Name)
	}

	if !doc.Kind.Translatable() {
		return fmt.Errorf("%w: %s (%s)", ErrNotTranslatable, doc.Path, doc.Kind)
	}

	locale, err := validation.ValidateLocale(locale, m.opts.AvailableLocales)
	if err != nil {
		return err
	}

	fields := doc.TranslatedFields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	now := m.now().UTC()
	for _, name := range names {
		m.pending = append(m.pending, operation{translation: &model.Translation{
			DocumentID: doc.ID,
			Locale:     locale,
			Field:      name,
			Value:      fields[name],
			CreatedAt:  now,
		}})
	}

	slog.Debug("translation bound", "path", doc.Path, "locale", locale, "fields", names)
	return nil
}

// Flush writes all queued changes in one transaction
func (m *Manager) Flush(ctx context.Context) error {
	if len(m.pending) == 0 {
		return nil
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, op := range m.pending {
		if op.doc != nil {
			err = m.documents.Save(ctx, tx, op.doc)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("failed to save %s: %w", op.doc.Path, err)
			}
			continue
		}

		err = m.translations.Save(ctx, tx, op.translation)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to save %s translation of %s: %w", op.translation.Locale, op.translation.DocumentID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	slog.Debug("store flushed", "operations", len(m.pending))
	m.pending = nil
	return nil
}

// Purge removes every stored document and forgets all managed state
func (m *Manager) Purge(ctx context.Context) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = m.documents.DeleteAll(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to purge documents: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit purge: %w", err)
	}

	m.Clear()
	return nil
}

// Clear detaches all managed documents and drops unflushed changes
func (m *Manager) Clear() {
	m.managed = make(map[string]*model.Document)
	m.byID = make(map[string]*model.Document)
	m.positions = make(map[string]int)
	m.pending = nil
}

// Pending returns the number of queued writes
func (m *Manager) Pending() int {
	return len(m.pending)
}

func (m *Manager) attach(doc *model.Document) {
	m.managed[doc.Path] = doc
	m.byID[doc.ID] = doc
}

func (m *Manager) checkFreePath(ctx context.Context, path string) error {
	if _, ok := m.managed[path]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}

	_, err := m.documents.ByPath(ctx, path)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}
	if !errors.Is(err, repository.ErrDocumentNotFound) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	return nil
}

func (m *Manager) nextPosition(ctx context.Context, parentID *string) (int, error) {
	key := ""
	if parentID != nil {
		key = *parentID
	}

	next, ok := m.positions[key]
	if !ok {
		var err error
		next, err = m.documents.NextPosition(ctx, parentID)
		if err != nil {
			return 0, fmt.Errorf("failed to read child positions: %w", err)
		}
	}

	m.positions[key] = next + 1
	return next, nil
}

// snapshot copies the row values of doc so later in-memory changes do not
// leak into queued writes
func snapshot(doc *model.Document) *model.Document {
	row := *doc
	row.Parent = nil
	row.Content = nil
	row.InfoBlock = nil
	row.Children = nil
	row.Settings = make(model.Settings, len(doc.Settings))
	for k, v := range doc.Settings {
		row.Settings[k] = v
	}
	return &row
}
