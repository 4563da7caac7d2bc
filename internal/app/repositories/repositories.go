package repositories

import (
	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/kvstore"
)

// Repositories holds all the repository instances
type Repositories struct {
	CatalogRepository  *CatalogRepository
	SnapshotRepository *SnapshotRepository
	ProfileRepository  *ProfileRepository
}

// NewRepositories initializes all repositories over one key/value store
func NewRepositories(store kvstore.Store, bundled models.CatalogTables, logger zerolog.Logger) *Repositories {
	return &Repositories{
		CatalogRepository:  NewCatalogRepository(store, bundled, logger.With().Str("component", "catalog").Logger()),
		SnapshotRepository: NewSnapshotRepository(store),
		ProfileRepository:  NewProfileRepository(store),
	}
}
