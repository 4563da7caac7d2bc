package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/validation"
)

// recordNamespace seeds the name-based ids of snapshot records
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("curriculum/snapshot-record"))

// RecordID returns the deterministic instance id of a course in a student's snapshot
func RecordID(studentID string, courseID int64) string {
	return uuid.NewSHA1(recordNamespace, []byte(studentID+"/"+strconv.FormatInt(courseID, 10))).String()
}

// InitializeRequest identifies a student and the program they declared
type InitializeRequest struct {
	StudentID   string
	ProgramName string
	// DegreeType and Level are optional; empty and zero mean "not supplied"
	DegreeType string
	Level      int
}

// EnrollmentOptions tunes lookup behaviour
type EnrollmentOptions struct {
	// LenientLookup turns an unknown program name into a silent no-op instead of
	// ErrProgramNotFound
	LenientLookup bool
}

// EnrollmentService defines the snapshot initialization operations
type EnrollmentService interface {
	InitializeStudentCourses(ctx context.Context, req InitializeRequest) ([]models.SnapshotRecord, error)
	ForceReinitializeStudentCourses(ctx context.Context, req InitializeRequest) ([]models.SnapshotRecord, error)
	ResolveProgram(ctx context.Context, req InitializeRequest) (*models.StudentProfile, error)
	StudentProfile(ctx context.Context, studentID string) (*models.StudentProfile, error)
	BuildSnapshot(studentID string, program models.Program) ([]models.SnapshotRecord, error)
}

// enrollmentServiceImpl implements the EnrollmentService interface
type enrollmentServiceImpl struct {
	catalog   CatalogService
	snapshots repositories.SnapshotStore
	profiles  *repositories.ProfileRepository
	opts      EnrollmentOptions
	logger    zerolog.Logger
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(
	catalog CatalogService,
	snapshots repositories.SnapshotStore,
	profiles *repositories.ProfileRepository,
	opts EnrollmentOptions,
	logger zerolog.Logger,
) EnrollmentService {
	return &enrollmentServiceImpl{
		catalog:   catalog,
		snapshots: snapshots,
		profiles:  profiles,
		opts:      opts,
		logger:    logger,
	}
}

// InitializeStudentCourses creates the student's snapshot unless one already exists.
// An existing snapshot is returned untouched, whatever program the request names.
// A nil result with a nil error means the program was unknown under lenient lookup.
func (s *enrollmentServiceImpl) InitializeStudentCourses(ctx context.Context, req InitializeRequest) ([]models.SnapshotRecord, error) {
	program, err := s.resolve(req)
	if err != nil || program == nil {
		return nil, err
	}

	existing, found, err := s.snapshots.Get(ctx, req.StudentID)
	switch {
	case err != nil && errors.Is(err, apperrors.ErrMalformedStorage):
		s.logger.Warn().Err(err).Str("studentID", req.StudentID).Msg("Stored snapshot is unreadable, rebuilding")
	case err != nil:
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	case found:
		s.logger.Debug().Str("studentID", req.StudentID).Int("records", len(existing)).Msg("Snapshot already initialized")
		return existing, nil
	}

	return s.build(ctx, req.StudentID, *program)
}

// ForceReinitializeStudentCourses rebuilds the snapshot from the catalog and overwrites
// any existing one in a single write. A failed write leaves the old snapshot in place.
func (s *enrollmentServiceImpl) ForceReinitializeStudentCourses(ctx context.Context, req InitializeRequest) ([]models.SnapshotRecord, error) {
	program, err := s.resolve(req)
	if err != nil || program == nil {
		return nil, err
	}

	s.logger.Info().Str("studentID", req.StudentID).Str("program", program.ProgramName).Msg("Reinitializing snapshot")
	return s.build(ctx, req.StudentID, *program)
}

// ResolveProgram validates a signup's declared program once and records the program id
// on the student's profile
func (s *enrollmentServiceImpl) ResolveProgram(ctx context.Context, req InitializeRequest) (*models.StudentProfile, error) {
	program, err := s.lookup(req)
	if err != nil {
		return nil, err
	}

	profile := &models.StudentProfile{
		StudentID:  req.StudentID,
		ProgramID:  program.ProgramID,
		DegreeType: req.DegreeType,
		Level:      req.Level,
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("error saving student profile: %w", err)
	}
	return profile, nil
}

func (s *enrollmentServiceImpl) StudentProfile(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	return s.profiles.Get(ctx, studentID)
}

// BuildSnapshot turns the program's enriched courses into fresh snapshot records.
// The result depends only on the catalog, the student id and the program.
func (s *enrollmentServiceImpl) BuildSnapshot(studentID string, program models.Program) ([]models.SnapshotRecord, error) {
	enriched, err := s.catalog.GetEnrichedCoursesForProgram(program.ProgramID)
	if err != nil {
		return nil, err
	}

	track := program.WithTrack().Track

	records := make([]models.SnapshotRecord, 0, len(enriched))
	for _, ec := range enriched {
		rec := models.SnapshotRecord{
			ID:        RecordID(studentID, ec.CourseID),
			CourseID:  ec.CourseID,
			Code:      ec.CourseCode,
			Title:     ec.CourseName,
			Credits:   ec.Credits,
			Semester:  ec.Semester,
			Completed: false,
			Grade:     "",
		}
		if track == models.TrackUndergraduate {
			rec.Level = models.LevelLabel(ec.YearRequired)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *enrollmentServiceImpl) build(ctx context.Context, studentID string, program models.Program) ([]models.SnapshotRecord, error) {
	records, err := s.BuildSnapshot(studentID, program)
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.Put(ctx, studentID, records); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("studentID", studentID).
		Int64("programID", program.ProgramID).
		Str("track", string(program.Track)).
		Int("records", len(records)).
		Msg("Student snapshot initialized")
	return records, nil
}

// resolve applies lenient lookup on top of lookup
func (s *enrollmentServiceImpl) resolve(req InitializeRequest) (*models.Program, error) {
	program, err := s.lookup(req)
	if err != nil && s.opts.LenientLookup && errors.Is(err, apperrors.ErrProgramNotFound) {
		s.logger.Warn().Str("studentID", req.StudentID).Str("program", req.ProgramName).Msg("Declared program not in catalog, skipping initialization")
		return nil, nil
	}
	return program, err
}

// lookup validates the request, resolves the program and enforces the degree guard
func (s *enrollmentServiceImpl) lookup(req InitializeRequest) (*models.Program, error) {
	if strings.TrimSpace(req.StudentID) == "" {
		return nil, apperrors.NewValidationError("student id is required")
	}

	program, err := s.catalog.GetProgramByName(req.ProgramName)
	if err != nil {
		return nil, err
	}

	if err := validation.DegreeLevel(req.Level, req.DegreeType, program.Track); err != nil {
		return nil, err
	}
	return program, nil
}
