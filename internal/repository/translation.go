package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/templui/sitefixtures/internal/model"
)

type TranslationRepository interface {
	Save(ctx context.Context, ex sqlx.ExtContext, tr *model.Translation) error
	ByDocument(ctx context.Context, documentID string) ([]*model.Translation, error)
	ByDocumentAndLocale(ctx context.Context, documentID, locale string) ([]*model.Translation, error)
	Locales(ctx context.Context, documentID string) ([]string, error)
	Count(ctx context.Context) (int, error)
}

type translationRepository struct {
	db *sqlx.DB
}

func NewTranslationRepository(db *sqlx.DB) TranslationRepository {
	return &translationRepository{db: db}
}

// Save inserts the translated field or replaces its value
func (r *translationRepository) Save(ctx context.Context, ex sqlx.ExtContext, tr *model.Translation) error {
	query := `INSERT INTO translations (document_id, locale, field, value, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (document_id, locale, field) DO UPDATE SET value = excluded.value`

	_, err := ex.ExecContext(ctx, query,
		tr.DocumentID,
		tr.Locale,
		tr.Field,
		tr.Value,
		tr.CreatedAt,
	)

	return err
}

func (r *translationRepository) ByDocument(ctx context.Context, documentID string) ([]*model.Translation, error) {
	var translations []*model.Translation
	query := `SELECT * FROM translations WHERE document_id = $1 ORDER BY locale ASC, field ASC`

	err := r.db.SelectContext(ctx, &translations, query, documentID)
	if err != nil {
		return nil, err
	}

	return translations, nil
}

func (r *translationRepository) ByDocumentAndLocale(ctx context.Context, documentID, locale string) ([]*model.Translation, error) {
	var translations []*model.Translation
	query := `SELECT * FROM translations WHERE document_id = $1 AND locale = $2 ORDER BY field ASC`

	err := r.db.SelectContext(ctx, &translations, query, documentID, locale)
	if err != nil {
		return nil, err
	}

	return translations, nil
}

func (r *translationRepository) Locales(ctx context.Context, documentID string) ([]string, error) {
	var locales []string
	query := `SELECT DISTINCT locale FROM translations WHERE document_id = $1 ORDER BY locale ASC`

	err := r.db.SelectContext(ctx, &locales, query, documentID)
	if err != nil {
		return nil, err
	}

	return locales, nil
}

func (r *translationRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations`).Scan(&count)
	return count, err
}
