package statistics

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/eduforge/coursepay/pkg/types"
)

func TestSalesStatisticValue_ScansFractionalAmounts(t *testing.T) {
	// the GMV queries sum a numeric(12,2) column, so the scanned value can be
	// fractional; the count queries feed whole numbers through the same field
	var item SalesStatisticResponseDataItem
	require.NoError(t, item.Value.Scan("299.80"))
	require.True(t, item.Value.Equal(decimal.RequireFromString("299.8")))

	require.NoError(t, item.Value.Scan(int64(7)))
	require.True(t, item.Value.Equal(decimal.NewFromInt(7)))
}

func TestGetFilters_DropsInapplicableKnownFilters(t *testing.T) {
	req := &SalesStatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: "course_id", Operator: types.CommonFilterOperatorEq, Values: []any{"c-1"}},
			{Field: "currency", Operator: types.CommonFilterOperatorEq, Values: []any{"BRL"}},
		},
	}

	// course_id applies to daily gmv, plus the pass-through currency filter
	got := req.GetFilters(StatisticTypeDailyGmv)
	require.Len(t, got.Filters, 2)

	// course_id does not apply to the status breakdown; currency passes through
	got = req.GetFilters(StatisticTypeStatusBreakdown)
	require.Len(t, got.Filters, 1)
	require.Equal(t, "currency", got.Filters[0].Field)
}

func TestGetSalesStatistic_SkipsItemsFilterDoesNotApplyTo(t *testing.T) {
	svc := New(nil)
	req := &SalesStatisticRequest{
		Filters: []*types.CommonFilter{
			{Field: "provider", Operator: types.CommonFilterOperatorEq, Values: []any{"stripe"}},
		},
		DataItems: []*SalesStatisticDataItem{{ID: StatisticTypeTopCourses}},
	}

	// the provider filter does not apply to top courses, so the item resolves
	// to nil without touching the database
	res, err := svc.GetSalesStatistic(context.Background(), req)
	require.NoError(t, err)
	require.Contains(t, res.DataItems, StatisticTypeTopCourses)
	require.Nil(t, res.DataItems[StatisticTypeTopCourses])
}

func TestGetSalesStatistic_UnknownDataItem(t *testing.T) {
	svc := New(nil)
	req := &SalesStatisticRequest{
		DataItems: []*SalesStatisticDataItem{{ID: "bogus"}},
	}
	_, err := svc.GetSalesStatistic(context.Background(), req)
	require.Error(t, err)
}
