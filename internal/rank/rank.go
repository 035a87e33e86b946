// Package rank maintains purchase-history statistics and derives sort
// order and autocomplete relevance from them. All functions are pure map
// and slice arithmetic; the caller owns concurrency.
package rank

import (
	"strings"
	"time"
)

// Stats holds the derived ranking state. Ranks and BuyCounts are keyed by
// the lowercased item name; History keeps every distinct name ever added
// in its display form, in first-seen order.
type Stats struct {
	Ranks     map[string]int64 `json:"itemRanks"`
	BuyCounts map[string]int   `json:"itemBuyCounts"`
	History   []string         `json:"itemHistory"`
}

// NewStats returns empty statistics with initialized maps.
func NewStats() Stats {
	return Stats{
		Ranks:     make(map[string]int64),
		BuyCounts: make(map[string]int),
	}
}

// Normalize ensures maps are non-nil after JSON decoding.
func (s *Stats) Normalize() {
	if s.Ranks == nil {
		s.Ranks = make(map[string]int64)
	}

	if s.BuyCounts == nil {
		s.BuyCounts = make(map[string]int)
	}
}

// Rank returns the historical rank for name, or now (in Unix millis) when
// the name has never been bought. Never-bought items therefore sort by
// recency of add among freshly-touched ones.
func (s *Stats) Rank(name string, now time.Time) int64 {
	if r, ok := s.Ranks[strings.ToLower(name)]; ok {
		return r
	}

	return now.UnixMilli()
}

// MarkBought records a purchase: the name's rank becomes now and its buy
// count increments.
func (s *Stats) MarkBought(name string, now time.Time) {
	key := strings.ToLower(name)
	s.Ranks[key] = now.UnixMilli()
	s.BuyCounts[key]++
}

// MarkPending records an un-buy and returns the order the revived item
// should take: the most recent historical rank, so the item reappears at
// its earned position rather than at the top. The buy count decrements,
// floored at zero.
func (s *Stats) MarkPending(name string, now time.Time) int64 {
	key := strings.ToLower(name)
	if s.BuyCounts[key] > 0 {
		s.BuyCounts[key]--
	}

	return s.Rank(name, now)
}

// Record adds the display form of name to the history if not already
// present. The containment check is exact, matching how the history was
// accumulated originally.
func (s *Stats) Record(name string) {
	for _, h := range s.History {
		if h == name {
			return
		}
	}

	s.History = append(s.History, name)
}

// BuyCount returns how many times name has been bought.
func (s Stats) BuyCount(name string) int {
	return s.BuyCounts[strings.ToLower(name)]
}
