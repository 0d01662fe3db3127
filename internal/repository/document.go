package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/templui/sitefixtures/internal/model"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
)

// DocumentRepository reads and writes documents. Write methods take the
// executor so the store can run them inside its flush transaction.
type DocumentRepository interface {
	Save(ctx context.Context, ex sqlx.ExtContext, doc *model.Document) error
	ByID(ctx context.Context, id string) (*model.Document, error)
	ByPath(ctx context.Context, path string) (*model.Document, error)
	Children(ctx context.Context, parentID string) ([]*model.Document, error)
	Descendants(ctx context.Context, path string) ([]*model.Document, error)
	NextPosition(ctx context.Context, parentID *string) (int, error)
	CountByKind(ctx context.Context) (map[model.Kind]int, error)
	DeleteAll(ctx context.Context, ex sqlx.ExtContext) error
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Save inserts the document or updates it when the id already exists
func (r *documentRepository) Save(ctx context.Context, ex sqlx.ExtContext, doc *model.Document) error {
	query := `INSERT INTO documents (id, parent_id, path, name, kind, locale, title, body, body_html, settings, route_content_id, position, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          ON CONFLICT (id) DO UPDATE SET
	              parent_id = excluded.parent_id,
	              path = excluded.path,
	              name = excluded.name,
	              locale = excluded.locale,
	              title = excluded.title,
	              body = excluded.body,
	              body_html = excluded.body_html,
	              settings = excluded.settings,
	              route_content_id = excluded.route_content_id,
	              updated_at = excluded.updated_at`

	_, err := ex.ExecContext(ctx, query,
		doc.ID,
		doc.ParentID,
		doc.Path,
		doc.Name,
		doc.Kind,
		doc.Locale,
		doc.Title,
		doc.Body,
		doc.BodyHTML,
		doc.Settings,
		doc.RouteContentID,
		doc.Position,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	return err
}

func (r *documentRepository) ByID(ctx context.Context, id string) (*model.Document, error) {
	doc := &model.Document{}
	query := `SELECT * FROM documents WHERE id = $1`

	err := r.db.GetContext(ctx, doc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (r *documentRepository) ByPath(ctx context.Context, path string) (*model.Document, error) {
	doc := &model.Document{}
	query := `SELECT * FROM documents WHERE path = $1`

	err := r.db.GetContext(ctx, doc, query, path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (r *documentRepository) Children(ctx context.Context, parentID string) ([]*model.Document, error) {
	var docs []*model.Document
	query := `SELECT * FROM documents WHERE parent_id = $1 ORDER BY position ASC, name ASC`

	err := r.db.SelectContext(ctx, &docs, query, parentID)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// Descendants returns the document at path and everything below it,
// parents before children
func (r *documentRepository) Descendants(ctx context.Context, path string) ([]*model.Document, error) {
	var docs []*model.Document
	query := `SELECT * FROM documents WHERE path = $1 OR path LIKE $2 ESCAPE '\' ORDER BY path ASC`

	prefix := escapeLike(path) + "/%"
	if path == model.RootPath {
		prefix = "/%"
	}

	err := r.db.SelectContext(ctx, &docs, query, path, prefix)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// NextPosition returns the position after the last stored child of parentID
// (top-level documents when parentID is nil)
func (r *documentRepository) NextPosition(ctx context.Context, parentID *string) (int, error) {
	var next int
	var err error
	if parentID == nil {
		err = r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM documents WHERE parent_id IS NULL`).Scan(&next)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM documents WHERE parent_id = $1`, *parentID).Scan(&next)
	}
	return next, err
}

func (r *documentRepository) CountByKind(ctx context.Context) (map[model.Kind]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT kind, COUNT(*) FROM documents GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Kind]int)
	for rows.Next() {
		var kind model.Kind
		var count int
		err = rows.Scan(&kind, &count)
		if err != nil {
			return nil, err
		}
		counts[kind] = count
	}

	return counts, rows.Err()
}

func (r *documentRepository) DeleteAll(ctx context.Context, ex sqlx.ExtContext) error {
	_, err := ex.ExecContext(ctx, `DELETE FROM translations`)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `DELETE FROM documents`)
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes the LIKE wildcards of a literal prefix
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
