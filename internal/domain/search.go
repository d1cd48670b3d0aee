package domain

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// UnsetCategory marks an absent category filter.
const UnsetCategory int64 = -1

// ProductFilters is the search the user composed: optional title text,
// optional category, and either an exact target price or a min/max range,
// never both.
type ProductFilters struct {
	Title       string
	CategoryID  int64 // UnsetCategory when absent
	TargetPrice int64 // exact-price mode, 0 when absent
	MinPrice    int64
	MaxPrice    int64 // range mode when non-zero
}

func ExactPriceFilters(title string, targetPrice, categoryID int64) ProductFilters {
	return ProductFilters{
		Title:       title,
		CategoryID:  categoryID,
		TargetPrice: targetPrice,
	}
}

func RangeFilters(title string, minPrice, maxPrice, categoryID int64) ProductFilters {
	return ProductFilters{
		Title:      title,
		CategoryID: categoryID,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
	}
}

func (f ProductFilters) Validate() error {
	if f.TargetPrice < 0 || f.MinPrice < 0 || f.MaxPrice < 0 {
		return fmt.Errorf("negative price")
	}

	if f.TargetPrice != 0 && (f.MinPrice != 0 || f.MaxPrice != 0) {
		return fmt.Errorf("targetPrice and price range are mutually exclusive")
	}

	if f.MaxPrice != 0 && f.MinPrice > f.MaxPrice {
		return fmt.Errorf("minPrice %d above maxPrice %d", f.MinPrice, f.MaxPrice)
	}

	return nil
}

// HasText reports whether the filters carry actual search text.
// Text-less searches are "browse all" events and are not recorded.
func (f ProductFilters) HasText() bool {
	return strings.TrimSpace(f.Title) != ""
}

// Hash is the identity key of the filter set: equivalent searches issued
// at different times collapse into one history record.
func (f ProductFilters) Hash() int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d|%d|%d", f.Title, f.CategoryID, f.TargetPrice, f.MinPrice, f.MaxPrice)
	return int64(h.Sum64())
}

// SearchQueryRecord is one previously executed search, deduplicated by
// the filter-set hash. Re-issuing an equivalent search bumps LastAccess.
type SearchQueryRecord struct {
	Query       string
	CategoryID  int64
	TargetPrice int64
	MinPrice    int64
	MaxPrice    int64
	LastAccess  time.Time
}

func (r SearchQueryRecord) Filters() ProductFilters {
	return ProductFilters{
		Title:       r.Query,
		CategoryID:  r.CategoryID,
		TargetPrice: r.TargetPrice,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
	}
}
