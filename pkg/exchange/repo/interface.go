package repo

import "context"

type ITrade interface {
	Create(ctx context.Context, record *Trade) (*Trade, error)
	BulkCreate(ctx context.Context, records []*Trade) ([]*Trade, error)
	ListBySymbol(ctx context.Context, symbol string, limit int) ([]*Trade, error)
}
