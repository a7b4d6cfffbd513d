package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eduforge/coursepay/pkg/types"
)

type StatisticType string

const (
	StatisticTypeDailyPurchaseCount StatisticType = "daily_purchase_count"
	StatisticTypeDailyGmv           StatisticType = "daily_gmv"
	StatisticTypeTotalGmv           StatisticType = "total_gmv"
	StatisticTypeStatusBreakdown    StatisticType = "status_breakdown"
	StatisticTypeDailyNewStudents   StatisticType = "daily_new_students"
	StatisticTypeTopCourses         StatisticType = "top_courses"
)

// Filter fields only some statistic types understand.
type SalesStatisticFilterType string

const (
	SalesStatisticFilterTypeProvider SalesStatisticFilterType = "provider"
	SalesStatisticFilterTypeCourseID SalesStatisticFilterType = "course_id"
)

var filterTypes = []SalesStatisticFilterType{
	SalesStatisticFilterTypeProvider,
	SalesStatisticFilterTypeCourseID,
}

var validFilters = map[SalesStatisticFilterType][]StatisticType{
	SalesStatisticFilterTypeProvider: {StatisticTypeDailyPurchaseCount, StatisticTypeDailyGmv, StatisticTypeStatusBreakdown},
	SalesStatisticFilterTypeCourseID: {StatisticTypeDailyPurchaseCount, StatisticTypeDailyGmv},
}

type SalesStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type SalesStatisticRequest struct {
	Filters   []*types.CommonFilter     `json:"filters"`
	DataItems []*SalesStatisticDataItem `json:"data_items"`
}

func (f *SalesStatisticRequest) GetFilters(statisticType StatisticType) *SalesStatisticRequest {
	if f == nil || len(f.Filters) == 0 {
		return f
	}
	var result SalesStatisticRequest
	for _, filter := range f.Filters {
		if statisticTypes, ok := validFilters[SalesStatisticFilterType(filter.Field)]; ok {
			if lo.Contains(statisticTypes, statisticType) {
				result.Filters = append(result.Filters, filter)
			}
		} else {
			result.Filters = append(result.Filters, filter)
		}
	}
	return &result
}

// Build composes a WHERE clause from the provided filters.
func (f *SalesStatisticRequest) Build(builder clause.Builder) {
	if f == nil || len(f.Filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	for i, filter := range f.Filters {
		if i > 0 {
			builder.WriteString(" AND ")
		}
		filter.Build(builder)
	}
}

// Value is a decimal because the GMV items sum the numeric amount column;
// count-based items scan whole numbers into it just as well.
type SalesStatisticResponseDataItem struct {
	Date  string          `json:"date,omitempty"`
	Label string          `json:"label,omitempty"`
	Value decimal.Decimal `json:"value"`
}

type SalesStatisticResponse struct {
	DataItems map[StatisticType][]SalesStatisticResponseDataItem `json:"data_items"`
}

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getDailyPurchaseCount(ctx context.Context, request *SalesStatisticRequest) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("purchase").
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status = ?", types.PurchaseStatusApproved).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyPurchaseCount)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyGmv(ctx context.Context, request *SalesStatisticRequest) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("purchase").
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, currency AS label, sum(amount) as value").
		Where("status = ?", types.PurchaseStatusApproved).
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeDailyGmv)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("currency").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getTotalGmv returns the running total of approved purchase amounts per day
// and currency.
func (s *Service) getTotalGmv(ctx context.Context, _ *SalesStatisticRequest) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH daily AS (
    SELECT TO_CHAR(created_at, 'YYYY-MM-DD') as date, currency as label, SUM(amount) as value
    FROM purchase
    WHERE status = ?
    GROUP BY TO_CHAR(created_at, 'YYYY-MM-DD'), currency
)
SELECT d.date as date, d.label as label, SUM(s.value) as value
FROM daily d
LEFT JOIN daily s ON s.date <= d.date AND s.label = d.label
GROUP BY d.date, d.label
ORDER BY d.date DESC, d.label ASC
`, types.PurchaseStatusApproved).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatusBreakdown(ctx context.Context, request *SalesStatisticRequest) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	q := s.db.WithContext(ctx).Table("purchase").
		Select("status as label, count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{request.GetFilters(StatisticTypeStatusBreakdown)}}).
		Group("status").
		Order("label")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyNewStudents(ctx context.Context, _ *SalesStatisticRequest) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH first_purchase AS (
    SELECT user_id, MIN(DATE(created_at)) as date
    FROM purchase
    WHERE status = ?
    GROUP BY user_id
)
SELECT TO_CHAR(date, 'YYYY-MM-DD') as date, COUNT(*) as value
FROM first_purchase
GROUP BY date
ORDER BY date DESC
`, types.PurchaseStatusApproved).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTopCourses(ctx context.Context, _ *SalesStatisticRequest) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
SELECT c.title as label, COUNT(*) as value
FROM purchase p
JOIN course c ON c.id = p.course_id
WHERE p.status = ?
GROUP BY c.title
ORDER BY value DESC
LIMIT 20
`, types.PurchaseStatusApproved).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getSalesStatistic(ctx context.Context, request *SalesStatisticRequest, dataItem *SalesStatisticDataItem) ([]SalesStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyPurchaseCount:
		return s.getDailyPurchaseCount(ctx, request)
	case StatisticTypeDailyGmv:
		return s.getDailyGmv(ctx, request)
	case StatisticTypeTotalGmv:
		return s.getTotalGmv(ctx, request)
	case StatisticTypeStatusBreakdown:
		return s.getStatusBreakdown(ctx, request)
	case StatisticTypeDailyNewStudents:
		return s.getDailyNewStudents(ctx, request)
	case StatisticTypeTopCourses:
		return s.getTopCourses(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetSalesStatistic resolves each requested data item concurrently.
func (s *Service) GetSalesStatistic(ctx context.Context, request *SalesStatisticRequest) (*SalesStatisticResponse, error) {
	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []SalesStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *SalesStatisticDataItem) {
			defer wg.Done()
			// skip data items a provided filter does not apply to
			for _, filter := range request.Filters {
				ft := SalesStatisticFilterType(filter.Field)
				if lo.Contains(filterTypes, ft) && !lo.Contains(validFilters[ft], di.ID) {
					resChan <- &lo.Entry[StatisticType, []SalesStatisticResponseDataItem]{Key: di.ID, Value: nil}
					return
				}
			}
			res, err := s.getSalesStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []SalesStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]SalesStatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err, ok := <-errChan:
			if ok {
				return nil, err
			}
			// error channel closed: every remaining result is buffered
			entry := <-resChan
			results[entry.Key] = entry.Value
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &SalesStatisticResponse{DataItems: results}, nil
}
