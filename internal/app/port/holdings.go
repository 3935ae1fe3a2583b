package port

import "portfolio_tracker/internal/domain/entity"

// HoldingsProvider supplies the asset list for one aggregation pass.
type HoldingsProvider interface {
	GetHoldings() ([]entity.Holding, error)
}
