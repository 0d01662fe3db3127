package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/templui/sitefixtures/internal/storage"
)

// ExportService writes YAML snapshots of the stored tree
type ExportService struct {
	tree    *TreeService
	storage storage.Storage
}

func NewExportService(tree *TreeService, storage storage.Storage) *ExportService {
	return &ExportService{
		tree:    tree,
		storage: storage,
	}
}

// Export saves the tree below root under key and returns its location
func (s *ExportService) Export(ctx context.Context, root, key string) (string, error) {
	tree, err := s.tree.Tree(ctx, root)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err = enc.Encode(tree)
	if err != nil {
		return "", fmt.Errorf("failed to encode tree: %w", err)
	}
	err = enc.Close()
	if err != nil {
		return "", fmt.Errorf("failed to encode tree: %w", err)
	}

	err = s.storage.Save(ctx, key, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}

	url := s.storage.URL(key)
	slog.Info("tree exported", "root", root, "location", url)
	return url, nil
}
