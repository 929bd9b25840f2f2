// Package traverse implements the traversal engine of spec §4.3: a bounded,
// multi-worker crawl over remote directory trees that enforces policy,
// boundary safety, and at-most-once dispatch per URL.
package traverse

import (
	"sync"

	xxhash "github.com/OneOfOne/xxhash"
	cuckoo "github.com/seiflotfy/cuckoofilter"
)

// VisitedSet enforces spec §3's "process-wide set of URL strings already
// dispatched... at-most-once crawl per URL" with an insert-if-absent atomic
// that never blocks readers (spec §5). The sync.Map is the sole source of
// truth for the at-most-once guarantee (LoadOrStore is exact and atomic); a
// cuckoo filter is additionally maintained purely so Count (exposed via
// metrics during a long crawl) is O(1) instead of a full sync.Map.Range.
type VisitedSet struct {
	mu    sync.Mutex
	fast  *cuckoo.Filter
	exact sync.Map // string (raw 8-byte URL hash) -> struct{}
}

// NewVisitedSet sizes the cuckoo filter for capacity URLs; sizing close to
// the expected crawl keeps its false-positive rate, and so the error of
// Count, low. TryVisit consults the sync.Map alone.
func NewVisitedSet(capacity uint) *VisitedSet {
	return &VisitedSet{fast: cuckoo.NewFilter(capacity)}
}

func hashURL(url string) []byte {
	h := xxhash.Checksum64([]byte(url))
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (8 * i))
	}
	return b
}

// TryVisit reports whether url had not yet been visited, atomically marking
// it visited as a side effect. Only the first caller for a given url gets
// true; every subsequent caller (even a concurrent one) gets false.
func (v *VisitedSet) TryVisit(url string) bool {
	key := hashURL(url)
	keyStr := string(key)

	if _, loaded := v.exact.LoadOrStore(keyStr, struct{}{}); loaded {
		return false
	}

	v.mu.Lock()
	v.fast.InsertUnique(key)
	v.mu.Unlock()
	return true
}

// Count returns an O(1) estimate of the number of distinct URLs visited so
// far (the cuckoo filter's count, not an exact sync.Map enumeration).
func (v *VisitedSet) Count() uint {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fast.Count()
}
