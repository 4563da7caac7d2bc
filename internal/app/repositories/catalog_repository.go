package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/kvstore"
	"github.com/yigit/curriculum/internal/pkg/notify"
	"github.com/yigit/curriculum/internal/pkg/validation"
)

// Table is the storage key of one catalog table overlay
type Table string

const (
	TableDepartments    Table = "catalog_departments"
	TableCatalogYears   Table = "catalog_catalog_years"
	TablePrograms       Table = "catalog_programs"
	TableCourses        Table = "catalog_courses"
	TableProgramCourses Table = "catalog_program_courses"
	TablePrerequisites  Table = "catalog_prerequisites"
)

// AllTables lists the catalog tables in load order
func AllTables() []Table {
	return []Table{
		TableDepartments,
		TableCatalogYears,
		TablePrograms,
		TableCourses,
		TableProgramCourses,
		TablePrerequisites,
	}
}

// IsCatalogTable reports whether key names a catalog table
func IsCatalogTable(key string) bool {
	for _, t := range AllTables() {
		if string(t) == key {
			return true
		}
	}
	return false
}

// CatalogRepository materializes the catalog from bundled defaults and storage overlays.
// An overlay replaces a whole table; bundled tables are never modified.
type CatalogRepository struct {
	store   kvstore.Store
	bundled models.CatalogTables

	mu          sync.RWMutex
	tables      models.CatalogTables
	overlayErrs map[Table]error

	logger zerolog.Logger
}

// NewCatalogRepository creates a catalog repository. Until Load is called it serves
// the bundled tables.
func NewCatalogRepository(store kvstore.Store, bundled models.CatalogTables, logger zerolog.Logger) *CatalogRepository {
	bundled = bundled.Clone()
	bundled.Programs = withTracks(bundled.Programs)

	return &CatalogRepository{
		store:       store,
		bundled:     bundled,
		tables:      bundled.Clone(),
		overlayErrs: make(map[Table]error),
		logger:      logger,
	}
}

// Load materializes every table
func (r *CatalogRepository) Load(ctx context.Context) error {
	for _, t := range AllTables() {
		if err := r.Refresh(ctx, t); err != nil {
			return err
		}
	}
	r.logger.Info().
		Int("departments", len(r.Departments())).
		Int("programs", len(r.Programs())).
		Int("courses", len(r.Courses())).
		Int("programCourses", len(r.ProgramCourses())).
		Int("prerequisites", len(r.Prerequisites())).
		Msg("Catalog loaded")
	return nil
}

// Refresh re-reads one table from storage. A malformed overlay falls back to the
// bundled table and is recorded in OverlayErrors. A storage failure keeps the current
// table and is returned.
func (r *CatalogRepository) Refresh(ctx context.Context, table Table) error {
	var err error
	r.mu.Lock()
	defer r.mu.Unlock()

	switch table {
	case TableDepartments:
		r.tables.Departments, err = loadTable(ctx, r, table, r.tables.Departments, r.bundled.Departments, checkDepartments)
	case TableCatalogYears:
		r.tables.CatalogYears, err = loadTable(ctx, r, table, r.tables.CatalogYears, r.bundled.CatalogYears, checkCatalogYears)
	case TablePrograms:
		var programs []models.Program
		programs, err = loadTable(ctx, r, table, r.tables.Programs, r.bundled.Programs, checkPrograms)
		r.tables.Programs = withTracks(programs)
	case TableCourses:
		r.tables.Courses, err = loadTable(ctx, r, table, r.tables.Courses, r.bundled.Courses, checkCourses)
	case TableProgramCourses:
		r.tables.ProgramCourses, err = loadTable(ctx, r, table, r.tables.ProgramCourses, r.bundled.ProgramCourses, checkProgramCourses)
	case TablePrerequisites:
		r.tables.Prerequisites, err = loadTable(ctx, r, table, r.tables.Prerequisites, r.bundled.Prerequisites, checkPrerequisites)
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownTable, table)
	}
	return err
}

// loadTable must be called with r.mu held. It returns current unchanged when storage
// cannot be read.
func loadTable[T any](ctx context.Context, r *CatalogRepository, table Table, current, fallback []T, check func([]T) error) ([]T, error) {
	var rows []T
	found, err := kvstore.GetJSON(ctx, r.store, string(table), &rows)
	if err == nil && found {
		err = check(rows)
	}

	switch {
	case err == nil && found:
		delete(r.overlayErrs, table)
		r.logger.Debug().Str("table", string(table)).Int("rows", len(rows)).Msg("Using catalog overlay")
		return rows, nil
	case err == nil:
		delete(r.overlayErrs, table)
		return cloneRows(fallback), nil
	case errors.Is(err, apperrors.ErrMalformedStorage), errors.Is(err, apperrors.ErrSchemaViolation):
		r.overlayErrs[table] = err
		r.logger.Warn().Err(err).Str("table", string(table)).Msg("Ignoring invalid catalog overlay, using bundled table")
		return cloneRows(fallback), nil
	default:
		return current, fmt.Errorf("error reading %s: %w", table, err)
	}
}

// Watch refreshes tables named by incoming changes until ctx ends or changes closes
func (r *CatalogRepository) Watch(ctx context.Context, changes <-chan notify.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if !IsCatalogTable(change.Key) {
				continue
			}
			if err := r.Refresh(ctx, Table(change.Key)); err != nil {
				r.logger.Error().Err(err).Str("table", change.Key).Msg("Failed to refresh catalog table")
			}
		}
	}
}

// OverlayErrors returns the tables whose overlay was rejected on the last refresh
func (r *CatalogRepository) OverlayErrors() map[Table]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Table]error, len(r.overlayErrs))
	for k, v := range r.overlayErrs {
		out[k] = v
	}
	return out
}

// Tables returns a copy of every materialized table
func (r *CatalogRepository) Tables() models.CatalogTables {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tables.Clone()
}

func (r *CatalogRepository) Departments() []models.Department {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRows(r.tables.Departments)
}

func (r *CatalogRepository) CatalogYears() []models.CatalogYear {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRows(r.tables.CatalogYears)
}

func (r *CatalogRepository) Programs() []models.Program {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRows(r.tables.Programs)
}

func (r *CatalogRepository) Courses() []models.Course {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRows(r.tables.Courses)
}

func (r *CatalogRepository) ProgramCourses() []models.ProgramCourse {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return models.CatalogTables{ProgramCourses: r.tables.ProgramCourses}.Clone().ProgramCourses
}

func (r *CatalogRepository) Prerequisites() []models.Prerequisite {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRows(r.tables.Prerequisites)
}

// ActiveCatalogYear returns the first catalog year flagged active
func (r *CatalogRepository) ActiveCatalogYear() (models.CatalogYear, bool) {
	for _, cy := range r.CatalogYears() {
		if cy.IsActive {
			return cy, true
		}
	}
	return models.CatalogYear{}, false
}

// ReplaceDepartments overwrites the departments overlay
func (r *CatalogRepository) ReplaceDepartments(ctx context.Context, rows []models.Department) error {
	return replaceTable(ctx, r, TableDepartments, rows, checkDepartments, func(t *models.CatalogTables) {
		t.Departments = cloneRows(rows)
	})
}

// ReplaceCatalogYears overwrites the catalog years overlay
func (r *CatalogRepository) ReplaceCatalogYears(ctx context.Context, rows []models.CatalogYear) error {
	return replaceTable(ctx, r, TableCatalogYears, rows, checkCatalogYears, func(t *models.CatalogTables) {
		t.CatalogYears = cloneRows(rows)
	})
}

// ReplacePrograms overwrites the programs overlay
func (r *CatalogRepository) ReplacePrograms(ctx context.Context, rows []models.Program) error {
	return replaceTable(ctx, r, TablePrograms, rows, checkPrograms, func(t *models.CatalogTables) {
		t.Programs = withTracks(rows)
	})
}

// ReplaceCourses overwrites the courses overlay
func (r *CatalogRepository) ReplaceCourses(ctx context.Context, rows []models.Course) error {
	return replaceTable(ctx, r, TableCourses, rows, checkCourses, func(t *models.CatalogTables) {
		t.Courses = cloneRows(rows)
	})
}

// ReplaceProgramCourses overwrites the program course placements overlay
func (r *CatalogRepository) ReplaceProgramCourses(ctx context.Context, rows []models.ProgramCourse) error {
	return replaceTable(ctx, r, TableProgramCourses, rows, checkProgramCourses, func(t *models.CatalogTables) {
		t.ProgramCourses = models.CatalogTables{ProgramCourses: rows}.Clone().ProgramCourses
	})
}

// ReplacePrerequisites overwrites the prerequisites overlay
func (r *CatalogRepository) ReplacePrerequisites(ctx context.Context, rows []models.Prerequisite) error {
	return replaceTable(ctx, r, TablePrerequisites, rows, checkPrerequisites, func(t *models.CatalogTables) {
		t.Prerequisites = cloneRows(rows)
	})
}

func replaceTable[T any](ctx context.Context, r *CatalogRepository, table Table, rows []T, check func([]T) error, apply func(*models.CatalogTables)) error {
	if err := check(rows); err != nil {
		return err
	}
	if rows == nil {
		rows = []T{}
	}
	if err := kvstore.SetJSON(ctx, r.store, string(table), rows); err != nil {
		return fmt.Errorf("error writing %s: %w", table, err)
	}

	r.mu.Lock()
	apply(&r.tables)
	delete(r.overlayErrs, table)
	r.mu.Unlock()

	r.logger.Info().Str("table", string(table)).Int("rows", len(rows)).Msg("Catalog table replaced")
	return nil
}

func withTracks(programs []models.Program) []models.Program {
	out := make([]models.Program, len(programs))
	for i, p := range programs {
		out[i] = p.WithTrack()
	}
	return out
}

func cloneRows[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return append([]T(nil), rows...)
}

// Row and intra-table checks. Each returns an error wrapping ErrSchemaViolation.

func checkRows[T any, K comparable](table Table, rows []T, key func(T) K) error {
	seen := make(map[K]int, len(rows))
	for i, row := range rows {
		if err := validation.Struct(row); err != nil {
			return fmt.Errorf("%w: %s row %d: %v", apperrors.ErrSchemaViolation, table, i, err)
		}
		k := key(row)
		if j, dup := seen[k]; dup {
			return fmt.Errorf("%w: %s rows %d and %d share key %v", apperrors.ErrSchemaViolation, table, j, i, k)
		}
		seen[k] = i
	}
	return nil
}

func checkDepartments(rows []models.Department) error {
	return checkRows(TableDepartments, rows, func(d models.Department) int64 { return d.DepartmentID })
}

func checkCatalogYears(rows []models.CatalogYear) error {
	return checkRows(TableCatalogYears, rows, func(cy models.CatalogYear) int64 { return cy.CatalogYearID })
}

func checkPrograms(rows []models.Program) error {
	if err := checkRows(TablePrograms, rows, func(p models.Program) int64 { return p.ProgramID }); err != nil {
		return err
	}
	return checkRows(TablePrograms, rows, func(p models.Program) string { return p.ProgramName })
}

func checkCourses(rows []models.Course) error {
	if err := checkRows(TableCourses, rows, func(c models.Course) int64 { return c.CourseID }); err != nil {
		return err
	}
	return checkRows(TableCourses, rows, func(c models.Course) string { return c.CourseCode })
}

func checkProgramCourses(rows []models.ProgramCourse) error {
	return checkRows(TableProgramCourses, rows, func(pc models.ProgramCourse) [2]int64 { return pc.Key() })
}

func checkPrerequisites(rows []models.Prerequisite) error {
	return checkRows(TablePrerequisites, rows, func(p models.Prerequisite) [2]int64 {
		return [2]int64{p.CourseID, p.PrerequisiteCourseID}
	})
}
