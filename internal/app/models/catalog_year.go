package models

// CatalogYear is an academic catalog edition. Exactly one row is expected to be active.
type CatalogYear struct {
	CatalogYearID int64  `json:"catalog_year_id" yaml:"catalog_year_id" validate:"gt=0"`
	Year          string `json:"year" yaml:"year" validate:"required"`
	IsActive      bool   `json:"is_active" yaml:"is_active"`
}
