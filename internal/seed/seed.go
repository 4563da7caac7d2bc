package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yigit/curriculum/internal/app/models"
)

//go:embed catalog.yaml
var bundledCatalog []byte

// DefaultCatalog returns the catalog tables compiled into the binary
func DefaultCatalog() (models.CatalogTables, error) {
	return Parse(bundledCatalog)
}

// LoadCatalog reads catalog tables from a YAML file. An empty path yields the
// bundled default catalog.
func LoadCatalog(path string) (models.CatalogTables, error) {
	if path == "" {
		return DefaultCatalog()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return models.CatalogTables{}, fmt.Errorf("failed to read catalog seed: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML catalog tables
func Parse(raw []byte) (models.CatalogTables, error) {
	var tables models.CatalogTables
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return models.CatalogTables{}, fmt.Errorf("failed to parse catalog seed: %w", err)
	}
	return tables, nil
}
