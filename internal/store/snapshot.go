package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartwaste-backend/internal/model"
)

// SnapshotRepository persists and restores the volatile state.
type SnapshotRepository interface {
	// Load returns the stored snapshot. ok is false when nothing was saved yet.
	Load(ctx context.Context) (snap Snapshot, ok bool, err error)
	Save(ctx context.Context, snap Snapshot) error
}

// gormSnapshotRepository implements SnapshotRepository using GORM.
type gormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GORM-backed snapshot repository.
func NewGormSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &gormSnapshotRepository{db: db}
}

func (r *gormSnapshotRepository) Load(ctx context.Context) (Snapshot, bool, error) {
	var snap Snapshot
	db := r.db.WithContext(ctx)

	if err := db.Order("seq").Find(&snap.Bins).Error; err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to load bins: %w", err)
	}
	if len(snap.Bins) == 0 {
		return Snapshot{}, false, nil
	}

	if err := db.Order("seq").Find(&snap.Schedules).Error; err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to load schedules: %w", err)
	}

	var rec model.SettingsRecord
	err := db.First(&rec, 1).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		log.Println("No stored settings found; using defaults.")
		snap.Settings = model.DefaultSettings()
	case err != nil:
		return Snapshot{}, false, fmt.Errorf("failed to load settings: %w", err)
	default:
		snap.Settings = MergeSettings(model.DefaultSettings(), rec.Patch())
	}

	return snap, true, nil
}

// Save upserts every bin, schedule and the settings row in one transaction.
func (r *gormSnapshotRepository) Save(ctx context.Context, snap Snapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(snap.Bins) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"lat", "lng", "weight", "seq"}),
			}).Create(&snap.Bins).Error; err != nil {
				return fmt.Errorf("failed to upsert bins: %w", err)
			}
		}

		if len(snap.Schedules) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"bin_id", "date", "time_window", "status", "seq"}),
			}).Create(&snap.Schedules).Error; err != nil {
				return fmt.Errorf("failed to upsert schedules: %w", err)
			}
		}

		rec := snap.Settings.ToRecord()
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		return nil
	})
}
