package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/curriculum/internal/app/models"
	"github.com/yigit/curriculum/internal/pkg/kvstore"
)

// SnapshotKeyPrefix prefixes the storage key of every student snapshot
const SnapshotKeyPrefix = "user_courses_"

// SnapshotKey returns the storage key holding a student's snapshot
func SnapshotKey(studentID string) string {
	return SnapshotKeyPrefix + studentID
}

// SnapshotStore persists whole per-student snapshots
type SnapshotStore interface {
	// Get returns the snapshot and whether one exists. Undecodable data is reported
	// as found together with an error wrapping ErrMalformedStorage.
	Get(ctx context.Context, studentID string) ([]models.SnapshotRecord, bool, error)

	// Put replaces the whole snapshot. Concurrent writers are last-write-wins.
	Put(ctx context.Context, studentID string, records []models.SnapshotRecord) error

	// Delete discards the snapshot
	Delete(ctx context.Context, studentID string) error
}

// SnapshotRepository is a SnapshotStore over a key/value store
type SnapshotRepository struct {
	store kvstore.Store
}

var _ SnapshotStore = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(store kvstore.Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

func (r *SnapshotRepository) Get(ctx context.Context, studentID string) ([]models.SnapshotRecord, bool, error) {
	var records []models.SnapshotRecord
	found, err := kvstore.GetJSON(ctx, r.store, SnapshotKey(studentID), &records)
	if err != nil {
		return nil, found, err
	}
	if !found {
		return nil, false, nil
	}
	if records == nil {
		records = []models.SnapshotRecord{}
	}
	return records, true, nil
}

func (r *SnapshotRepository) Put(ctx context.Context, studentID string, records []models.SnapshotRecord) error {
	if records == nil {
		records = []models.SnapshotRecord{}
	}
	if err := kvstore.SetJSON(ctx, r.store, SnapshotKey(studentID), records); err != nil {
		return fmt.Errorf("error saving snapshot for student %s: %w", studentID, err)
	}
	return nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, studentID string) error {
	return r.store.Delete(ctx, SnapshotKey(studentID))
}

// StudentIDs lists students that have a stored snapshot
func (r *SnapshotRepository) StudentIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, SnapshotKeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, SnapshotKeyPrefix))
	}
	return ids, nil
}
