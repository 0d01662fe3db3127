package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/templui/sitefixtures/internal/model"
	"github.com/templui/sitefixtures/internal/repository"
	"github.com/templui/sitefixtures/internal/validation"
)

var ErrTreeNotFound = errors.New("tree root not found")

// Counts summarizes the stored documents
type Counts struct {
	Kinds        map[model.Kind]int
	Documents    int
	Blocks       int
	Translations int
}

type TreeService struct {
	documents    repository.DocumentRepository
	translations repository.TranslationRepository
}

func NewTreeService(documents repository.DocumentRepository, translations repository.TranslationRepository) *TreeService {
	return &TreeService{
		documents:    documents,
		translations: translations,
	}
}

// Tree reads the document at root and everything below it. Children are
// ordered by position, then name.
func (s *TreeService) Tree(ctx context.Context, root string) (*model.TreeNode, error) {
	err := validation.ValidatePath(root)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.Descendants(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents below %s: %w", root, err)
	}

	var top *model.TreeNode
	if root == model.RootPath {
		top = &model.TreeNode{Path: model.RootPath, Kind: model.KindGeneric}
	}

	nodes := make(map[string]*model.TreeNode, len(docs))
	byID := make(map[string]*model.Document, len(docs))
	for _, doc := range docs {
		node, err := s.node(ctx, doc)
		if err != nil {
			return nil, err
		}
		nodes[doc.ID] = node
		byID[doc.ID] = doc
		if doc.Path == root {
			top = node
		}
	}
	if top == nil {
		return nil, fmt.Errorf("%w: %s", ErrTreeNotFound, root)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].Position != docs[j].Position {
			return docs[i].Position < docs[j].Position
		}
		return docs[i].Name < docs[j].Name
	})

	for _, doc := range docs {
		node := nodes[doc.ID]
		if node == top {
			continue
		}

		parent := top
		if doc.ParentID != nil {
			if p, ok := nodes[*doc.ParentID]; ok {
				parent = p
			}
		}
		node.Parent = parent
		parent.Children = append(parent.Children, node)

		if doc.RouteContentID != nil {
			node.Route, err = s.routeTarget(ctx, *doc.RouteContentID, byID)
			if err != nil {
				return nil, err
			}
		}
	}

	return top, nil
}

// Counts returns the number of stored documents per kind and of translation rows
func (s *TreeService) Counts(ctx context.Context) (Counts, error) {
	kinds, err := s.documents.CountByKind(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count documents: %w", err)
	}

	translations, err := s.translations.Count(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count translations: %w", err)
	}

	counts := Counts{Kinds: kinds, Translations: translations}
	for kind, n := range kinds {
		counts.Documents += n
		if kind.IsBlock() {
			counts.Blocks += n
		}
	}
	return counts, nil
}

func (s *TreeService) node(ctx context.Context, doc *model.Document) (*model.TreeNode, error) {
	node := &model.TreeNode{
		Name:     doc.Name,
		Path:     doc.Path,
		Kind:     doc.Kind,
		Locale:   doc.Locale,
		Title:    doc.Title,
		Body:     doc.Body,
		Settings: doc.Settings,
	}

	if !doc.Kind.Translatable() {
		return node, nil
	}

	translations, err := s.translations.ByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read translations of %s: %w", doc.Path, err)
	}
	if len(translations) == 0 {
		return node, nil
	}

	node.Translations = make(map[string]map[string]string)
	for _, tr := range translations {
		fields, ok := node.Translations[tr.Locale]
		if !ok {
			fields = make(map[string]string)
			node.Translations[tr.Locale] = fields
		}
		fields[tr.Field] = tr.Value
	}
	return node, nil
}

// routeTarget resolves the path of a route's content, which may live outside
// the requested subtree
func (s *TreeService) routeTarget(ctx context.Context, id string, loaded map[string]*model.Document) (string, error) {
	if doc, ok := loaded[id]; ok {
		return doc.Path, nil
	}

	doc, err := s.documents.ByID(ctx, id)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve route target %s: %w", id, err)
	}
	return doc.Path, nil
}
