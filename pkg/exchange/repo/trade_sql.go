package repo

import (
	"context"

	"gorm.io/gorm"
)

type TradeSQLRepo struct {
	db *gorm.DB
}

func NewTradeSQLRepo(db *gorm.DB) *TradeSQLRepo {
	return &TradeSQLRepo{
		db: db,
	}
}

func (s *TradeSQLRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *TradeSQLRepo) Create(ctx context.Context, record *Trade) (*Trade, error) {
	if err := s.dbWithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (s *TradeSQLRepo) BulkCreate(ctx context.Context, records []*Trade) ([]*Trade, error) {
	if len(records) == 0 {
		return records, nil
	}
	if err := s.dbWithContext(ctx).CreateInBatches(records, 500).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *TradeSQLRepo) ListBySymbol(ctx context.Context, symbol string, limit int) ([]*Trade, error) {
	var out []*Trade
	err := s.dbWithContext(ctx).
		Where("symbol = ?", symbol).
		Order("executed_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
