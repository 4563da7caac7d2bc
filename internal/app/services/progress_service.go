package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/app/repositories"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/validation"
)

// AddCourseRequest describes an administrator adding a catalog course to a snapshot
type AddCourseRequest struct {
	CourseID int64  `validate:"gt=0"`
	Level    string `validate:"omitempty,max=5"`
	Semester int    `validate:"min=0,max=8"`
}

// ProgressService defines the per-student snapshot read and mutation operations
type ProgressService interface {
	GetStudentCourses(ctx context.Context, studentID string) ([]models.SnapshotRecord, error)
	SaveStudentCourse(ctx context.Context, studentID string, patch models.SnapshotPatch) (*models.SnapshotRecord, error)
	AddStudentCourse(ctx context.Context, studentID string, req AddCourseRequest) (*models.SnapshotRecord, error)
	RemoveStudentCourse(ctx context.Context, studentID, recordID string) error
	Summary(ctx context.Context, studentID string) (*models.ProgressSummary, error)
}

// progressServiceImpl implements the ProgressService interface
type progressServiceImpl struct {
	snapshots repositories.SnapshotStore
	catalog   CatalogService
	logger    zerolog.Logger
}

// NewProgressService creates a new progress service instance
func NewProgressService(snapshots repositories.SnapshotStore, catalog CatalogService, logger zerolog.Logger) ProgressService {
	return &progressServiceImpl{
		snapshots: snapshots,
		catalog:   catalog,
		logger:    logger,
	}
}

// GetStudentCourses returns the live snapshot, or an empty slice when none exists or
// the stored data cannot be read
func (s *progressServiceImpl) GetStudentCourses(ctx context.Context, studentID string) ([]models.SnapshotRecord, error) {
	records, found, err := s.snapshots.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrMalformedStorage) {
			s.logger.Warn().Err(err).Str("studentID", studentID).Msg("Unreadable snapshot, treating as empty")
			return []models.SnapshotRecord{}, nil
		}
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}
	if !found {
		return []models.SnapshotRecord{}, nil
	}
	return records, nil
}

// SaveStudentCourse applies a partial update to the record with patch.ID and writes the
// whole snapshot back. There is no version check: the last writer wins.
func (s *progressServiceImpl) SaveStudentCourse(ctx context.Context, studentID string, patch models.SnapshotPatch) (*models.SnapshotRecord, error) {
	if patch.Grade != nil {
		g := strings.ToUpper(strings.TrimSpace(*patch.Grade))
		patch.Grade = &g
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	records, err := s.GetStudentCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}

	idx := indexOfRecord(records, patch.ID)
	if idx < 0 {
		return nil, apperrors.NewNotFoundError(apperrors.ErrSnapshotRecordNotFound, patch.ID)
	}

	rec := &records[idx]
	if patch.Completed != nil {
		rec.Completed = *patch.Completed
	}
	if patch.Grade != nil {
		rec.Grade = *patch.Grade
	}

	if err := s.snapshots.Put(ctx, studentID, records); err != nil {
		return nil, err
	}
	updated := *rec
	return &updated, nil
}

// AddStudentCourse copies a catalog course into the student's snapshot
func (s *progressServiceImpl) AddStudentCourse(ctx context.Context, studentID string, req AddCourseRequest) (*models.SnapshotRecord, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	course, err := s.catalog.GetCourseByID(req.CourseID)
	if err != nil {
		return nil, err
	}

	records, err := s.GetStudentCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.CourseID == course.CourseID {
			return nil, apperrors.NewConflictError(fmt.Sprintf("course %s is already in the snapshot", course.CourseCode))
		}
	}

	rec := models.SnapshotRecord{
		ID:       RecordID(studentID, course.CourseID),
		CourseID: course.CourseID,
		Code:     course.CourseCode,
		Title:    course.CourseName,
		Credits:  course.Credits,
		Level:    req.Level,
		Semester: req.Semester,
	}
	records = append(records, rec)

	if err := s.snapshots.Put(ctx, studentID, records); err != nil {
		return nil, err
	}
	s.logger.Info().Str("studentID", studentID).Str("course", course.CourseCode).Msg("Course added to snapshot")
	return &rec, nil
}

// RemoveStudentCourse deletes one record from the student's snapshot
func (s *progressServiceImpl) RemoveStudentCourse(ctx context.Context, studentID, recordID string) error {
	records, err := s.GetStudentCourses(ctx, studentID)
	if err != nil {
		return err
	}

	idx := indexOfRecord(records, recordID)
	if idx < 0 {
		return apperrors.NewNotFoundError(apperrors.ErrSnapshotRecordNotFound, recordID)
	}
	records = append(records[:idx], records[idx+1:]...)

	if err := s.snapshots.Put(ctx, studentID, records); err != nil {
		return err
	}
	s.logger.Info().Str("studentID", studentID).Str("recordID", recordID).Msg("Course removed from snapshot")
	return nil
}

// Summary recomputes credit totals and GPA from the current snapshot
func (s *progressServiceImpl) Summary(ctx context.Context, studentID string) (*models.ProgressSummary, error) {
	records, err := s.GetStudentCourses(ctx, studentID)
	if err != nil {
		return nil, err
	}

	summary := Summarize(records)
	summary.StudentID = studentID
	return &summary, nil
}

// Summarize computes totals over records. GPA is the credit-weighted mean grade point
// of completed, graded records, and 0 when there are none.
func Summarize(records []models.SnapshotRecord) models.ProgressSummary {
	var (
		summary models.ProgressSummary
		points  float64
	)

	summary.TotalCourses = len(records)
	for _, r := range records {
		summary.TotalCredits += r.Credits
		if !r.Completed {
			continue
		}
		summary.CompletedCourses++
		summary.CompletedCredits += r.Credits

		gp, ok := models.GradePoint(r.Grade)
		if !ok {
			continue
		}
		summary.GradedCredits += r.Credits
		points += gp * float64(r.Credits)
	}

	if summary.GradedCredits > 0 {
		summary.GPA = points / float64(summary.GradedCredits)
	}
	return summary
}

func indexOfRecord(records []models.SnapshotRecord, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
