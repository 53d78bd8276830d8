// Package dedupe identifies the same contest entry across independently keyed
// stores and tracks which natural keys a reconciliation run has already seen.
package dedupe

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/penumbrapenned/penned/internal/domain/model"
)

// Separator joins the parts of a canonical natural key.
const Separator = "|"

// legacySeparators are separators found in keys built by older tooling.
var legacySeparators = []string{Separator, "::", "_"}

// normalize lower-cases s, trims it and collapses inner whitespace runs.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Key returns the canonical natural key of an entry:
// normalized email, normalized story title and canonical week.
func Key(email, title string, week model.WeekID) string {
	return normalize(email) + Separator + normalize(title) + Separator + string(week)
}

// KeyOf is Key applied to an entry.
func KeyOf(e model.Entry) string {
	return Key(e.AuthorEmail, e.StoryTitle, e.WeekID)
}

// Variants returns every key form a destination record may have been indexed
// under. rawWeek may be "week-N", "N" or anything else; unparsable values are
// used normalized as-is. The canonical Key is always among the variants.
func Variants(email, title, rawWeek string) []string {
	e, t := normalize(email), normalize(title)

	var weeks []string
	if w, err := model.ParseWeekID(rawWeek); err == nil {
		weeks = []string{string(w), strconv.Itoa(w.Number())}
	} else {
		weeks = []string{normalize(rawWeek)}
	}

	out := make([]string, 0, len(legacySeparators)*len(weeks))
	for _, sep := range legacySeparators {
		for _, w := range weeks {
			out = append(out, e+sep+t+sep+w)
		}
	}
	return out
}

// Deduper records seen natural keys so each is written at most once per run.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Record marks keys as seen without checking.
	Record(ctx context.Context, keys ...string)

	// Unrecord removes a key, e.g. after the write it guarded failed.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a mutex-guarded map. It never
// evicts: a reconciliation run must remember every key it has seen.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	capacity int
	size     atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, d.capacity)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Record(_ context.Context, keys ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, k := range keys {
		if _, exists := d.seen[k]; exists {
			continue
		}
		d.seen[k] = struct{}{}
		d.size.Add(1)
	}
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// Size returns the current number of recorded keys, variants included.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
