package storage

import (
	paymentmodel "github.com/siddeeqzul/calculatorzakakt/internal/core/datamodel/payment"
	paymentpkg "github.com/siddeeqzul/calculatorzakakt/internal/payment"
	"gorm.io/gorm"
)

// HistoryRepository is the gorm-backed append-only payment log. It exposes
// Append and List only; nothing in this package can mutate or remove a row.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) paymentpkg.HistoryAPI {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(rec *paymentmodel.HistoryRecord) error {
	return r.db.Create(rec).Error
}

func (r *HistoryRepository) List() ([]*paymentmodel.HistoryRecord, error) {
	var records []*paymentmodel.HistoryRecord
	err := r.db.Order("id ASC").Find(&records).Error
	return records, err
}
