package visited

import (
	"github.com/bits-and-blooms/bloom/v3"
)

// Default sizing for the scalable filter.
const (
	// DefaultErrorRate is the compound false-positive rate bound.
	DefaultErrorRate = 0.01

	// DefaultInitialCapacity is the capacity of the first tier. Small on
	// purpose: most news domains have a few hundred visited URLs, and
	// growth handles the rest.
	DefaultInitialCapacity = 1000

	// growthFactor multiplies the capacity of each successive tier.
	growthFactor = 4

	// tighteningRatio shrinks the per-tier error rate so the compound
	// rate over all tiers stays within the configured bound.
	tighteningRatio = 0.9
)

// ScalableFilter is a probabilistic set of URL strings that grows in tiers:
// a chain of fixed-capacity bloom filters where a new, larger and stricter
// tier is added once the newest tier reaches capacity.
//
// Guarantees:
//   - No false negatives: an added URL is always reported present.
//   - Bounded false positives: tier i is built with error rate
//     e*(1-r)*r^i, so the compound rate over the whole chain is at most
//     the configured e regardless of how many tiers are added.
//
// The filter is never persisted. It is rebuilt from the ledger at session
// start and discarded at session end, so accuracy drift cannot accumulate
// across sessions. Not safe for concurrent use; the crawl loop is
// single-threaded by design.
type ScalableFilter struct {
	tiers     []*bloom.BloomFilter
	counts    []uint
	capacity  uint    // capacity of the newest tier
	errorRate float64 // per-tier error rate of the newest tier
}

// NewScalableFilter creates a filter with the given initial capacity and
// compound error rate bound. Non-positive arguments fall back to defaults.
func NewScalableFilter(initialCapacity uint, errorRate float64) *ScalableFilter {
	if initialCapacity == 0 {
		initialCapacity = DefaultInitialCapacity
	}
	if errorRate <= 0 || errorRate >= 1 {
		errorRate = DefaultErrorRate
	}

	// The first tier takes e*(1-r) so the geometric series over all
	// tiers sums to e.
	tierRate := errorRate * (1 - tighteningRatio)

	return &ScalableFilter{
		tiers:     []*bloom.BloomFilter{bloom.NewWithEstimates(initialCapacity, tierRate)},
		counts:    []uint{0},
		capacity:  initialCapacity,
		errorRate: tierRate,
	}
}

// Add inserts a URL into the newest tier, growing the chain first if the
// tier is at capacity. Adding an already-present URL is a no-op.
func (f *ScalableFilter) Add(url string) {
	if f.Contains(url) {
		return
	}

	last := len(f.tiers) - 1
	if f.counts[last] >= f.capacity {
		f.grow()
		last = len(f.tiers) - 1
	}

	f.tiers[last].AddString(url)
	f.counts[last]++
}

// Contains reports whether the URL may have been added. A false result is
// definitive; a true result is wrong with probability at most the
// configured error rate.
func (f *ScalableFilter) Contains(url string) bool {
	for _, tier := range f.tiers {
		if tier.TestString(url) {
			return true
		}
	}
	return false
}

// Len returns the number of URLs added across all tiers.
func (f *ScalableFilter) Len() uint {
	var n uint
	for _, c := range f.counts {
		n += c
	}
	return n
}

// Tiers returns the number of fixed-capacity filters in the chain.
func (f *ScalableFilter) Tiers() int {
	return len(f.tiers)
}

// grow appends a new tier with a larger capacity and a tighter error rate.
func (f *ScalableFilter) grow() {
	f.capacity *= growthFactor
	f.errorRate *= tighteningRatio
	f.tiers = append(f.tiers, bloom.NewWithEstimates(f.capacity, f.errorRate))
	f.counts = append(f.counts, 0)
}
