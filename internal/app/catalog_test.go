package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

func TestCatalog_LoadTruncatesToLimit(t *testing.T) {
	var hs []domain.Hotel
	for i := 0; i < 25; i++ {
		hs = append(hs, hotel(fmt.Sprint(i), "single", float64(100-i), 4, 1))
	}
	c := app.NewCatalog(&fakeListing{hotels: hs}, bedTypes)
	require.NoError(t, c.Load(context.Background()))

	v := c.View()
	assert.Len(t, v.SortedHotels, app.DefaultCatalogLimit)
	assert.Equal(t, app.StatusReady, v.Status)
	assert.False(t, v.Loading)
	assert.Equal(t, 20, v.BedTypeCounts["single"])
	// the first 20 records survive, not the 20 cheapest
	_, ok := c.Find("24")
	assert.False(t, ok)
	_, ok = c.Find("19")
	assert.True(t, ok)
}

func TestCatalog_WithLimit(t *testing.T) {
	c := app.NewCatalog(&fakeListing{hotels: sample()}, bedTypes, app.WithLimit(2))
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []string{"b", "a"}, ids(c.View().SortedHotels))
}

func TestCatalog_FetchFailureKeepsHotels(t *testing.T) {
	src := &fakeListing{hotels: sample()}
	pre := &countingPreloader{}
	c := app.NewCatalog(src, bedTypes, app.WithPreloader(pre))
	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, 1, pre.n)

	src.err = errors.New("boom")
	err := c.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetchFailed)

	v := c.View()
	assert.Len(t, v.SortedHotels, 5)
	assert.Equal(t, app.StatusFetchFailed, v.Status)
	assert.False(t, v.Loading)
	assert.Equal(t, 1, pre.n, "no preload hint after a failed load")

	// retry works
	src.err = nil
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, app.StatusReady, c.View().Status)
	assert.Equal(t, 2, pre.n)
}

func TestCatalog_InitialView(t *testing.T) {
	c := app.NewCatalog(&fakeListing{}, bedTypes)
	v := c.View()
	assert.Equal(t, app.StatusIdle, v.Status)
	assert.NotNil(t, v.SortedHotels)
	assert.NotNil(t, v.ChartData)
	assert.Equal(t, map[domain.BedType]int{"single": 0, "double": 0, "triple": 0}, v.BedTypeCounts)
	assert.Equal(t, app.SortByPrice, v.SortField)
}

func TestCatalog_FilterAffectsListAndChartNotCounts(t *testing.T) {
	c := app.NewCatalog(&fakeListing{hotels: sample()}, bedTypes)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.SetBedTypeFilter("double", true))
	v := c.View()
	assert.Equal(t, []string{"b", "d"}, ids(v.SortedHotels))
	assert.Len(t, v.ChartData, 2)
	assert.Equal(t, map[domain.BedType]int{"single": 2, "double": 2, "triple": 1}, v.BedTypeCounts)

	require.NoError(t, c.SetBedTypeFilter("triple", true))
	assert.Equal(t, []string{"b", "d", "c"}, ids(c.View().SortedHotels))

	require.NoError(t, c.SetBedTypeFilter("double", false))
	require.NoError(t, c.SetBedTypeFilter("triple", false))
	assert.Len(t, c.View().SortedHotels, 5)
	assert.Len(t, c.ChartData(), 5)
}

func TestCatalog_UnknownFilterKey(t *testing.T) {
	c := app.NewCatalog(&fakeListing{hotels: sample()}, bedTypes)
	err := c.SetBedTypeFilter("suite", true)
	assert.ErrorIs(t, err, domain.ErrUnknownFilterKey)
	assert.False(t, c.View().Filters.Any())
}

func TestCatalog_SortField(t *testing.T) {
	c := app.NewCatalog(&fakeListing{hotels: sample()}, bedTypes)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.SetSortField(app.SortByReviews))
	assert.Equal(t, []string{"c", "e", "a", "b", "d"}, ids(c.View().SortedHotels))

	assert.ErrorIs(t, c.SetSortField("stars"), domain.ErrUnknownSortField)
	assert.Equal(t, app.SortByReviews, c.View().SortField)
}

func TestCatalog_ViewIsACopy(t *testing.T) {
	c := app.NewCatalog(&fakeListing{hotels: sample()}, bedTypes)
	require.NoError(t, c.Load(context.Background()))

	v := c.View()
	v.SortedHotels[0].Title = "mutated"
	v.Filters["single"] = true
	assert.NotEqual(t, "mutated", c.View().SortedHotels[0].Title)
	assert.False(t, c.View().Filters.Any())
}

func TestCatalog_OverlappingLoadsKeepLoadingUntilLast(t *testing.T) {
	c := app.NewCatalog(&fakeListing{}, bedTypes)
	c.BeginLoad()
	c.BeginLoad()
	require.NoError(t, c.FinishLoad(sample()[:1], nil))
	assert.True(t, c.View().Loading)

	require.NoError(t, c.FinishLoad(sample(), nil))
	v := c.View()
	assert.False(t, v.Loading)
	assert.Len(t, v.SortedHotels, 5, "last fetch to finish wins")
}

func TestCatalog_NonFiniteNumbersStayRenderable(t *testing.T) {
	bad := hotel("x", "single", 0, 4, 1)
	bad.Price.Amount = domain.Number(math.NaN())
	bad.Rating.Average = domain.Number(math.Inf(1))
	c := app.NewCatalog(&fakeListing{hotels: append(sample(), bad)}, bedTypes)
	require.NoError(t, c.Load(context.Background()))

	// non-finite values compare as 0
	assert.Equal(t, []string{"x", "b", "d", "c", "a", "e"}, ids(c.View().SortedHotels))
	require.NoError(t, c.SetSortField(app.SortByRating))
	assert.Equal(t, "x", string(c.View().SortedHotels[5].ID))

	_, err := json.Marshal(c.View())
	assert.NoError(t, err)
}

func TestCatalog_ViewListsBedTypes(t *testing.T) {
	c := app.NewCatalog(&fakeListing{}, bedTypes)
	assert.Equal(t, bedTypes, c.View().BedTypes)
	assert.Equal(t, bedTypes, c.BedTypes())
}
