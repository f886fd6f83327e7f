package admin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AssetService lists the role templates and function handler scripts
// available under the data directory.
type AssetService struct {
	dataDir string
}

// NewAssetService creates an asset listing service over dataDir.
func NewAssetService(dataDir string) *AssetService {
	return &AssetService{dataDir: dataDir}
}

// RoleTemplates returns the template names under data/roles, without
// the .txt suffix.
func (s *AssetService) RoleTemplates() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, "roles"))
	if err != nil {
		return nil, fmt.Errorf("list role templates: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".txt") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".txt"))
		}
	}

	return names, nil
}

// FunctionScripts returns the handler file names under data/functions.
func (s *AssetService) FunctionScripts() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, "functions"))
	if err != nil {
		return nil, fmt.Errorf("list function scripts: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".js") {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}
