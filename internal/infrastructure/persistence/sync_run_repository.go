package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	syncdomain "github.com/erp/stocksync/internal/domain/sync"
	"github.com/erp/stocksync/internal/infrastructure/persistence/models"
)

// GormSyncRunRepository implements sync.RunRepository using GORM
type GormSyncRunRepository struct {
	db *gorm.DB
}

// NewGormSyncRunRepository creates a new GormSyncRunRepository
func NewGormSyncRunRepository(db *gorm.DB) *GormSyncRunRepository {
	return &GormSyncRunRepository{db: db}
}

// Create inserts a new sync run
func (r *GormSyncRunRepository) Create(ctx context.Context, run *syncdomain.Run) error {
	var model models.SyncRunModel
	model.FromDomain(run)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists run state changes
func (r *GormSyncRunRepository) Update(ctx context.Context, run *syncdomain.Run) error {
	var model models.SyncRunModel
	model.FromDomain(run)
	result := r.db.WithContext(ctx).Model(&models.SyncRunModel{}).
		Where("id = ?", model.ID).
		Select("*").Omit("id", "started_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return syncdomain.ErrRunNotFound
	}
	return nil
}

// FindByID finds a sync run by its ID
func (r *GormSyncRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*syncdomain.Run, error) {
	var model models.SyncRunModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, syncdomain.ErrRunNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecent returns runs for a store ordered by start time, newest first
func (r *GormSyncRunRepository) FindRecent(ctx context.Context, storeID string, limit, offset int) ([]syncdomain.Run, error) {
	var runModels []models.SyncRunModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("started_at DESC").
		Limit(limit).Offset(offset).
		Find(&runModels).Error; err != nil {
		return nil, err
	}

	runs := make([]syncdomain.Run, len(runModels))
	for i, model := range runModels {
		runs[i] = *model.ToDomain()
	}
	return runs, nil
}
