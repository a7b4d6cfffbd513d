package purchase

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/eduforge/coursepay/internal/models"
	"github.com/eduforge/coursepay/pkg/types"
)

type ScanPurchasesRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanPurchasesResponse struct {
	Items []*models.Purchase `json:"items"`
	Total int64              `json:"total"`
}

// filtersAnd combines multiple CommonFilter into one clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// ScanPurchases implements the paginated, filterable listing used by admin
// pages.
func (s *GormStore) ScanPurchases(ctx context.Context, req *ScanPurchasesRequest) (*ScanPurchasesResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Purchase{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	var rows []*models.Purchase
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy == "" {
		req.SortBy = "created_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})

	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return &ScanPurchasesResponse{Items: rows, Total: total}, nil
}

// ListByUser returns a user's purchases, newest first.
func (s *GormStore) ListByUser(ctx context.Context, userID string) ([]*models.Purchase, error) {
	var rows []*models.Purchase
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return rows, nil
}
