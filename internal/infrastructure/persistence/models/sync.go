package models

import (
	"time"

	"github.com/google/uuid"

	syncdomain "github.com/erp/stocksync/internal/domain/sync"
)

// SyncRunModel is the persistence model for the sync Run audit record.
type SyncRunModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	StoreID     string    `gorm:"type:varchar(50);not null;index:idx_sync_runs_store,priority:1"`
	TriggeredBy string    `gorm:"type:varchar(20);not null"`
	Status      string    `gorm:"type:varchar(20);not null"`

	Processed int `gorm:"not null;default:0"`
	Created   int `gorm:"not null;default:0"`
	Updated   int `gorm:"not null;default:0"`
	Skipped   int `gorm:"not null;default:0"`
	Errors    int `gorm:"not null;default:0"`

	Error       string    `gorm:"type:text"`
	StartedAt   time.Time `gorm:"not null;index:idx_sync_runs_store,priority:2,sort:desc"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (SyncRunModel) TableName() string {
	return "sync_runs"
}

// ToDomain converts the persistence model to a domain Run.
func (m *SyncRunModel) ToDomain() *syncdomain.Run {
	return &syncdomain.Run{
		ID:          m.ID,
		StoreID:     m.StoreID,
		TriggeredBy: syncdomain.Trigger(m.TriggeredBy),
		Status:      syncdomain.RunStatus(m.Status),
		Counts: syncdomain.Counts{
			Processed: m.Processed,
			Created:   m.Created,
			Updated:   m.Updated,
			Skipped:   m.Skipped,
			Errors:    m.Errors,
		},
		Error:       m.Error,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Run.
func (m *SyncRunModel) FromDomain(r *syncdomain.Run) {
	m.ID = r.ID
	m.StoreID = r.StoreID
	m.TriggeredBy = string(r.TriggeredBy)
	m.Status = string(r.Status)
	m.Processed = r.Counts.Processed
	m.Created = r.Counts.Created
	m.Updated = r.Counts.Updated
	m.Skipped = r.Counts.Skipped
	m.Errors = r.Counts.Errors
	m.Error = r.Error
	m.StartedAt = r.StartedAt
	m.CompletedAt = r.CompletedAt
}
