package service

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/templui/sitefixtures/internal/db/dbtest"
	"github.com/templui/sitefixtures/internal/model"
	"github.com/templui/sitefixtures/internal/repository"
	"github.com/templui/sitefixtures/internal/storage"
	"github.com/templui/sitefixtures/internal/store"
)

// seed stores a small site:
//
//	/cms/content/home (+ fr translation)
//	/cms/content/home/additionalInfoBlock/{b, a}
//	/cms/routes/home -> /cms/content/home
func seed(t *testing.T) *TreeService {
	t.Helper()
	ctx := context.Background()

	database := dbtest.New(t)
	documents := repository.NewDocumentRepository(database)
	translations := repository.NewTranslationRepository(database)
	manager := store.New(database, documents, translations, store.Options{DefaultLocale: "en"})

	content, err := manager.CreatePath(ctx, "/cms/content")
	require.NoError(t, err)
	routes, err := manager.CreatePath(ctx, "/cms/routes")
	require.NoError(t, err)

	page := model.NewDocument(model.KindStaticContent, "home", content)
	page.Title = "Home"
	page.Locale = "en"
	require.NoError(t, manager.Persist(ctx, page))

	route := model.NewDocument(model.KindRoute, "home", routes)
	route.Content = page
	require.NoError(t, manager.Persist(ctx, route))

	info := model.NewDocument(model.KindContainerBlock, "additionalInfoBlock", page)
	require.NoError(t, manager.Persist(ctx, info))

	b := model.NewDocument(model.KindSimpleBlock, "b", info)
	b.SetSetting("template", "b.html.twig")
	require.NoError(t, manager.Persist(ctx, b))
	a := model.NewDocument(model.KindSimpleBlock, "a", info)
	require.NoError(t, manager.Persist(ctx, a))

	fr := page.ForLocale("fr")
	fr.Title = "Accueil"
	require.NoError(t, manager.BindTranslation(ctx, fr, "fr"))

	require.NoError(t, manager.Flush(ctx))
	return NewTreeService(documents, translations)
}

func TestTree(t *testing.T) {
	s := seed(t)

	tree, err := s.Tree(context.Background(), "/cms")
	require.NoError(t, err)
	assert.Equal(t, "/cms", tree.Path)
	require.Len(t, tree.Children, 2)

	content, routes := tree.Children[0], tree.Children[1]
	assert.Equal(t, "content", content.Name)
	assert.Equal(t, "routes", routes.Name)
	assert.Same(t, tree, content.Parent)

	home := content.Children[0]
	assert.Equal(t, "Home", home.Title)
	assert.Equal(t, map[string]map[string]string{"fr": {"title": "Accueil"}}, home.Translations)

	info := home.Children[0]
	require.Len(t, info.Children, 2)
	assert.Equal(t, "b", info.Children[0].Name, "children keep insertion position")
	assert.Equal(t, "a", info.Children[1].Name)
	assert.Equal(t, "b.html.twig", info.Children[0].Settings["template"])

	require.Len(t, routes.Children, 1)
	assert.Equal(t, "/cms/content/home", routes.Children[0].Route)
}

func TestTree_RouteTargetOutsideSubtree(t *testing.T) {
	s := seed(t)

	tree, err := s.Tree(context.Background(), "/cms/routes")
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "/cms/content/home", tree.Children[0].Route)
}

func TestTree_RepositoryRoot(t *testing.T) {
	s := seed(t)

	tree, err := s.Tree(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "/", tree.Path)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "/cms", tree.Children[0].Path)
}

func TestTree_NotFound(t *testing.T) {
	s := seed(t)

	_, err := s.Tree(context.Background(), "/cms/menu")
	assert.ErrorIs(t, err, ErrTreeNotFound)

	_, err = s.Tree(context.Background(), "relative")
	assert.Error(t, err)
}

func TestTree_WildcardCharactersInRoot(t *testing.T) {
	ctx := context.Background()
	database := dbtest.New(t)
	documents := repository.NewDocumentRepository(database)
	translations := repository.NewTranslationRepository(database)
	manager := store.New(database, documents, translations, store.Options{})

	for _, p := range []string{"/site_a/mine", "/siteXa/foreign", "/50%/off", "/500/other"} {
		_, err := manager.CreatePath(ctx, p)
		require.NoError(t, err)
	}
	require.NoError(t, manager.Flush(ctx))

	s := NewTreeService(documents, translations)

	tree, err := s.Tree(ctx, "/site_a")
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "/site_a/mine", tree.Children[0].Path)

	tree, err = s.Tree(ctx, "/50%")
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "/50%/off", tree.Children[0].Path)
}

func TestCounts(t *testing.T) {
	s := seed(t)

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, counts.Documents)
	assert.Equal(t, 3, counts.Kinds[model.KindGeneric])
	assert.Equal(t, 2, counts.Kinds[model.KindSimpleBlock])
	assert.Equal(t, 3, counts.Blocks)
	assert.Equal(t, 1, counts.Translations)
}

func TestExport(t *testing.T) {
	s := seed(t)
	dir := t.TempDir()
	local := storage.NewLocalStorage(dir)

	url, err := NewExportService(s, local).Export(context.Background(), "/cms/content", "snapshots/content.yml")
	require.NoError(t, err)
	assert.Equal(t, local.URL("snapshots/content.yml"), url)

	data, err := os.ReadFile(local.Path("snapshots/content.yml"))
	require.NoError(t, err)

	var tree model.TreeNode
	require.NoError(t, yaml.Unmarshal(data, &tree))
	assert.Equal(t, "/cms/content", tree.Path)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "Accueil", tree.Children[0].Translations["fr"]["title"])
	assert.Equal(t, model.KindContainerBlock, tree.Children[0].Children[0].Kind)
}

func TestExport_MissingRoot(t *testing.T) {
	s := seed(t)

	_, err := NewExportService(s, storage.NewLocalStorage(t.TempDir())).Export(context.Background(), "/nowhere", "x.yml")
	assert.ErrorIs(t, err, ErrTreeNotFound)
}
