package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/sitefixtures/internal/db/dbtest"
	"github.com/templui/sitefixtures/internal/model"
	"github.com/templui/sitefixtures/internal/repository"
	"github.com/templui/sitefixtures/internal/validation"
)

type fixture struct {
	manager      *Manager
	documents    repository.DocumentRepository
	translations repository.TranslationRepository
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	database := dbtest.New(t)
	documents := repository.NewDocumentRepository(database)
	translations := repository.NewTranslationRepository(database)
	return fixture{
		manager:      New(database, documents, translations, opts),
		documents:    documents,
		translations: translations,
	}
}

func TestCreatePath_IsIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	content, err := f.manager.CreatePath(ctx, "/cms/content")
	require.NoError(t, err)
	assert.Equal(t, "/cms/content", content.Path)
	require.NoError(t, f.manager.Flush(ctx))

	again, err := f.manager.CreatePath(ctx, "/cms/content")
	require.NoError(t, err)
	assert.Equal(t, content.ID, again.ID)
	assert.Zero(t, f.manager.Pending())

	_, err = f.manager.CreatePath(ctx, "/cms/routes")
	require.NoError(t, err)
	require.NoError(t, f.manager.Flush(ctx))

	cms, err := f.documents.ByPath(ctx, "/cms")
	require.NoError(t, err)
	assert.Nil(t, cms.ParentID)

	children, err := f.documents.Children(ctx, cms.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "content", children[0].Name)
	assert.Equal(t, "routes", children[1].Name)
}

func TestFind(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	root, err := f.manager.Find(ctx, "/")
	require.NoError(t, err)
	assert.True(t, root.IsRoot())

	_, err = f.manager.Find(ctx, "/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.manager.Find(ctx, "relative")
	assert.ErrorIs(t, err, validation.ErrPathInvalid)

	_, err = f.manager.CreatePath(ctx, "/cms/content")
	require.NoError(t, err)

	// Pending documents are visible before a flush
	doc, err := f.manager.Find(ctx, "/cms/content")
	require.NoError(t, err)
	assert.Equal(t, "content", doc.Name)

	require.NoError(t, f.manager.Flush(ctx))
	f.manager.Clear()

	doc, err = f.manager.Find(ctx, "/cms/content")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
}

func TestPersist_CascadesParentAndRouteContent(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	contentRoot, err := f.manager.CreatePath(ctx, "/cms/content")
	require.NoError(t, err)
	routeRoot, err := f.manager.CreatePath(ctx, "/cms/routes")
	require.NoError(t, err)

	page := model.NewDocument(model.KindStaticContent, "about", contentRoot)
	route := model.NewDocument(model.KindRoute, "about", routeRoot)
	route.Content = page

	require.NoError(t, f.manager.Persist(ctx, route))
	assert.NotEmpty(t, page.ID, "route target is persisted first")
	require.NoError(t, f.manager.Flush(ctx))

	stored, err := f.documents.ByPath(ctx, "/cms/routes/about")
	require.NoError(t, err)
	require.NotNil(t, stored.RouteContentID)
	assert.Equal(t, page.ID, *stored.RouteContentID)

	block := model.NewDocument(model.KindContainerBlock, "additionalInfoBlock", model.NewDocument(model.KindStaticContent, "team", contentRoot))
	require.NoError(t, f.manager.Persist(ctx, block))
	require.NoError(t, f.manager.Flush(ctx))

	_, err = f.documents.ByPath(ctx, "/cms/content/team/additionalInfoBlock")
	require.NoError(t, err)
}

func TestPersist_SnapshotsValuesAndUpdates(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	contentRoot, err := f.manager.CreatePath(ctx, "/cms/content")
	require.NoError(t, err)

	page := model.NewDocument(model.KindStaticContent, "home", contentRoot)
	page.Title = "first"
	require.NoError(t, f.manager.Persist(ctx, page))
	page.Title = "changed after persist"
	require.NoError(t, f.manager.Flush(ctx))

	stored, err := f.documents.ByPath(ctx, "/cms/content/home")
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Title)

	require.NoError(t, f.manager.Persist(ctx, page))
	require.NoError(t, f.manager.Flush(ctx))

	stored, err = f.documents.ByPath(ctx, "/cms/content/home")
	require.NoError(t, err)
	assert.Equal(t, "changed after persist", stored.Title)
}

func TestPersist_Rejects(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	contentRoot, err := f.manager.CreatePath(ctx, "/cms/content")
	require.NoError(t, err)

	err = f.manager.Persist(ctx, model.NewDocument(model.KindStaticContent, "orphan", nil))
	assert.ErrorIs(t, err, ErrNoParent)

	err = f.manager.Persist(ctx, model.NewDocument(model.KindStaticContent, "a/b", contentRoot))
	assert.ErrorIs(t, err, validation.ErrNameInvalid)

	require.NoError(t, f.manager.Persist(ctx, model.NewDocument(model.KindStaticContent, "home", contentRoot)))
	err = f.manager.Persist(ctx, model.NewDocument(model.KindStaticContent, "home", contentRoot))
	assert.ErrorIs(t, err, ErrDuplicatePath)

	require.NoError(t, f.manager.Flush(ctx))
	f.manager.Clear()

	contentRoot, err = f.manager.Find(ctx, "/cms/content")
	require.NoError(t, err)
	err = f.manager.Persist(ctx, model.NewDocument(model.KindStaticContent, "home", contentRoot))
	assert.ErrorIs(t, err, ErrDuplicatePath, "stored documents also block the path")
}

func TestBindTranslation(t *testing.T) {
	f := newFixture(t, Options{DefaultLocale: "en", AvailableLocales: []string{"en", "fr"}})
	ctx := context.Background()

	contentRoot, err := f.manager.CreatePath(ctx, "/cms/content")
	require.NoError(t, err)

	page := model.NewDocument(model.KindStaticContent, "home", contentRoot)
	err = f.manager.BindTranslation(ctx, page, "en")
	assert.ErrorIs(t, err, ErrNotManaged)

	require.NoError(t, f.manager.Persist(ctx, page))

	en := page.ForLocale("en")
	en.Title = "Home"
	require.NoError(t, f.manager.BindTranslation(ctx, en, "en"))

	fr := page.ForLocale("fr")
	fr.Title = "Accueil"
	fr.Body = "<p>Bonjour</p>"
	require.NoError(t, f.manager.BindTranslation(ctx, fr, "fr"))

	de := page.ForLocale("de")
	de.Title = "Startseite"
	assert.ErrorIs(t, f.manager.BindTranslation(ctx, de, "de"), validation.ErrLocaleUnavailable)

	block := model.NewDocument(model.KindSimpleBlock, "teaser", page)
	require.NoError(t, f.manager.Persist(ctx, block))
	assert.ErrorIs(t, f.manager.BindTranslation(ctx, block, "en"), ErrNotTranslatable)

	require.NoError(t, f.manager.Flush(ctx))

	enRows, err := f.translations.ByDocumentAndLocale(ctx, page.ID, "en")
	require.NoError(t, err)
	require.Len(t, enRows, 1)
	assert.Equal(t, model.FieldTitle, enRows[0].Field)
	assert.Equal(t, "Home", enRows[0].Value)

	frRows, err := f.translations.ByDocumentAndLocale(ctx, page.ID, "fr")
	require.NoError(t, err)
	require.Len(t, frRows, 2)
	assert.Equal(t, model.FieldBody, frRows[0].Field)
	assert.Equal(t, model.FieldTitle, frRows[1].Field)

	stored, err := f.documents.ByID(ctx, page.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Title, "locale views never touch the primary document")
}

func TestDefaultLocale(t *testing.T) {
	assert.Equal(t, "de", New(nil, nil, nil, Options{DefaultLocale: "de"}).DefaultLocale())
	assert.Equal(t, "fr", New(nil, nil, nil, Options{AvailableLocales: []string{"fr", "en"}}).DefaultLocale())
	assert.Equal(t, "en", New(nil, nil, nil, Options{}).DefaultLocale())
}

func TestPurge(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	contentRoot, err := f.manager.CreatePath(ctx, "/cms/content")
	require.NoError(t, err)
	page := model.NewDocument(model.KindStaticContent, "home", contentRoot)
	require.NoError(t, f.manager.Persist(ctx, page))
	fr := page.ForLocale("fr")
	fr.Title = "Accueil"
	require.NoError(t, f.manager.BindTranslation(ctx, fr, "fr"))
	require.NoError(t, f.manager.Flush(ctx))

	require.NoError(t, f.manager.Purge(ctx))

	_, err = f.manager.Find(ctx, "/cms/content")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := f.translations.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
