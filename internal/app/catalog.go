package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

const DefaultCatalogLimit = 20

type LoadStatus string

const (
	StatusIdle        LoadStatus = "idle"
	StatusLoading     LoadStatus = "loading"
	StatusReady       LoadStatus = "ready"
	StatusFetchFailed LoadStatus = "fetch_failed"
)

// CatalogView is everything a client may read from a catalog.
type CatalogView struct {
	SortedHotels  []domain.Hotel         `json:"sorted_hotels"`
	BedTypeCounts map[domain.BedType]int `json:"bed_type_counts"`
	ChartData     []domain.ChartPoint    `json:"chart_data"`
	Loading       bool                   `json:"loading"`
	Status        LoadStatus             `json:"status"`
	Filters       FilterSet              `json:"filters"`
	BedTypes      []domain.BedType       `json:"bed_types"`
	SortField     SortField              `json:"sort_field"`
}

// Catalog holds the fetched hotels and the filter/sort selection, and keeps
// the derived lists in step with them. It is not safe for concurrent use;
// callers serialize access (see Session).
type Catalog struct {
	source   domain.ListingSource
	preload  domain.ChartPreloader
	bedTypes []domain.BedType
	limit    int

	hotels    []domain.Hotel
	filters   FilterSet
	sortField SortField
	loading   bool
	inflight  int
	status    LoadStatus

	// derived
	filtered []domain.Hotel
	sorted   []domain.Hotel
	counts   map[domain.BedType]int
	chart    []domain.ChartPoint

	hotelsDirty, filtersDirty, sortDirty bool
}

type CatalogOption func(*Catalog)

func WithLimit(n int) CatalogOption {
	return func(c *Catalog) {
		if n > 0 {
			c.limit = n
		}
	}
}

func WithPreloader(p domain.ChartPreloader) CatalogOption {
	return func(c *Catalog) { c.preload = p }
}

func NewCatalog(src domain.ListingSource, bedTypes []domain.BedType, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		source:    src,
		bedTypes:  slices.Clone(bedTypes),
		limit:     DefaultCatalogLimit,
		filters:   FilterSet{},
		sortField: SortByPrice,
		status:    StatusIdle,
	}
	for _, o := range opts {
		o(c)
	}
	c.hotelsDirty = true
	c.recompute()
	return c
}

// Load fetches the listing and replaces the hotel list with its first
// limit entries. On failure the previous hotels are kept and the returned
// error wraps domain.ErrFetchFailed. Load runs all three load phases on the
// calling goroutine; Session.LoadCatalog releases the session lock around
// the fetch instead.
func (c *Catalog) Load(ctx context.Context) error {
	src := c.BeginLoad()
	hs, err := src.ListHotels(ctx)
	return c.FinishLoad(hs, err)
}

// BeginLoad marks a fetch in flight and returns the source to fetch from.
// Every BeginLoad must be paired with one FinishLoad.
func (c *Catalog) BeginLoad() domain.ListingSource {
	c.inflight++
	c.loading = true
	c.status = StatusLoading
	return c.source
}

// FinishLoad applies the outcome of a fetch started with BeginLoad.
// Concurrent fetches are not merged: the last one to finish wins.
func (c *Catalog) FinishLoad(hs []domain.Hotel, err error) error {
	if c.inflight > 0 {
		c.inflight--
	}
	c.loading = c.inflight > 0

	if err != nil {
		c.status = StatusFetchFailed
		observability.ObserveCatalogLoad("failed")
		log.Warn().Err(err).Msg("catalog load failed")
		return fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	if len(hs) > c.limit {
		hs = hs[:c.limit]
	}
	c.hotels = slices.Clone(hs)
	c.hotelsDirty = true
	c.status = StatusReady
	c.recompute()
	observability.ObserveCatalogLoad("ok")

	if c.preload != nil {
		c.preload.PreloadChart()
	}
	return nil
}

func (c *Catalog) SetBedTypeFilter(key domain.BedType, active bool) error {
	if !slices.Contains(c.bedTypes, key) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFilterKey, key)
	}
	c.filters = c.filters.With(key, active)
	c.filtersDirty = true
	c.recompute()
	return nil
}

func (c *Catalog) SetSortField(f SortField) error {
	if _, ok := comparators[f]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownSortField, f)
	}
	if f != c.sortField {
		c.sortField = f
		c.sortDirty = true
		c.recompute()
	}
	return nil
}

// recompute rebuilds only the derived values whose inputs changed.
func (c *Catalog) recompute() {
	if c.hotelsDirty {
		c.counts = CountByType(c.hotels)
	}
	if c.hotelsDirty || c.filtersDirty {
		c.filtered = ApplyFilter(c.filters, c.hotels)
		c.chart = ChartTuples(c.filtered)
	}
	if c.hotelsDirty || c.filtersDirty || c.sortDirty {
		c.sorted = ApplySort(c.filtered, c.sortField)
	}
	c.hotelsDirty, c.filtersDirty, c.sortDirty = false, false, false
}

// Find looks a hotel up among the loaded records, filtered or not.
func (c *Catalog) Find(id domain.ID) (domain.Hotel, bool) {
	for _, h := range c.hotels {
		if h.ID == id {
			return h, true
		}
	}
	return domain.Hotel{}, false
}

// BedTypes lists the filter keys the catalog accepts, in configured order.
func (c *Catalog) BedTypes() []domain.BedType { return slices.Clone(c.bedTypes) }

func (c *Catalog) ChartData() []domain.ChartPoint { return slices.Clone(c.chart) }

func (c *Catalog) View() CatalogView {
	counts := make(map[domain.BedType]int, len(c.bedTypes))
	for _, b := range c.bedTypes {
		counts[b] = 0
	}
	for k, v := range c.counts {
		counts[k] = v
	}
	sorted := slices.Clone(c.sorted)
	if sorted == nil {
		sorted = []domain.Hotel{}
	}
	return CatalogView{
		SortedHotels:  sorted,
		BedTypeCounts: counts,
		ChartData:     slices.Clone(c.chart),
		Loading:       c.loading,
		Status:        c.status,
		Filters:       c.filters.Clone(),
		BedTypes:      c.BedTypes(),
		SortField:     c.sortField,
	}
}
