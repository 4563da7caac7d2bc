package repositories

import (
	"context"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/apperrors"
	"github.com/yigit/curriculum/internal/pkg/kvstore"
)

// ProfileKey returns the storage key of a student's resolved profile
func ProfileKey(studentID string) string {
	return "student_profile_" + studentID
}

// ProfileRepository stores the program a student was resolved to at signup
type ProfileRepository struct {
	store kvstore.Store
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(store kvstore.Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

// Get returns the profile or ErrStudentProfileNotFound
func (r *ProfileRepository) Get(ctx context.Context, studentID string) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	found, err := kvstore.GetJSON(ctx, r.store, ProfileKey(studentID), &profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NewNotFoundError(apperrors.ErrStudentProfileNotFound, studentID)
	}
	return &profile, nil
}

// Save replaces the stored profile
func (r *ProfileRepository) Save(ctx context.Context, profile *models.StudentProfile) error {
	return kvstore.SetJSON(ctx, r.store, ProfileKey(profile.StudentID), profile)
}
