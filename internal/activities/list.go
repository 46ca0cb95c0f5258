// Package activities keeps the user's activity list: summaries of every
// activity, with full activities loaded from a store on demand.
//
// A List is not safe for concurrent use.
package activities

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/intermernet/activate/internal/activity"
	"github.com/intermernet/activate/internal/track"
)

var (
	// ErrNotFound means no activity has the requested id.
	ErrNotFound = errors.New("activity not found")
	// ErrNoStore means an activity had to be loaded or saved without a store.
	ErrNoStore = errors.New("activity list has no store")
)

// Store persists the summary list and the full activity records.
type Store interface {
	LoadSummaries() ([]activity.Unloaded, error)
	SaveSummaries(summaries []activity.Unloaded) error
	LoadActivity(id uuid.UUID) (activity.Record, error)
	SaveActivity(rec activity.Record) error
	DeleteActivity(id uuid.UUID) error
}

// Progress is called once per activity processed by a long pass.
type Progress func(done, total int)

func (p Progress) report(done, total int) {
	if p != nil {
		p(done, total)
	}
}

// List is an ordered list of activity summaries plus a cache of the
// activities that have been fully loaded.
type List struct {
	summaries []activity.Unloaded
	loaded    map[uuid.UUID]*activity.Activity
	store     Store
	opts      []track.Option
}

// New returns a list over existing summaries. store may be nil for a purely
// in-memory list. opts are applied to every track loaded from the store.
func New(summaries []activity.Unloaded, store Store, opts ...track.Option) *List {
	return &List{
		summaries: slices.Clone(summaries),
		loaded:    make(map[uuid.UUID]*activity.Activity),
		store:     store,
		opts:      opts,
	}
}

// Load reads the summary list from store. A store with no summaries yields
// an empty list.
func Load(store Store, opts ...track.Option) (*List, error) {
	summaries, err := store.LoadSummaries()
	if err != nil {
		return nil, fmt.Errorf("load activity list: %w", err)
	}
	return New(summaries, store, opts...), nil
}

// Len returns the number of activities.
func (l *List) Len() int { return len(l.summaries) }

// Summaries returns a copy of the summaries in list order.
func (l *List) Summaries() []activity.Unloaded {
	return slices.Clone(l.summaries)
}

func (l *List) index(id uuid.UUID) int {
	return slices.IndexFunc(l.summaries, func(u activity.Unloaded) bool { return u.ID == id })
}

// ByID returns the summary of an activity.
func (l *List) ByID(id uuid.UUID) (activity.Unloaded, error) {
	i := l.index(id)
	if i < 0 {
		return activity.Unloaded{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.summaries[i], nil
}

// Get returns the full activity, loading it from the store the first time.
func (l *List) Get(id uuid.UUID) (*activity.Activity, error) {
	if a, ok := l.loaded[id]; ok {
		return a, nil
	}
	if _, err := l.ByID(id); err != nil {
		return nil, err
	}
	if l.store == nil {
		return nil, fmt.Errorf("load %s: %w", id, ErrNoStore)
	}
	rec, err := l.store.LoadActivity(id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	a, err := activity.FromRecord(rec, l.opts...)
	if err != nil {
		return nil, err
	}
	l.loaded[id] = a
	return a, nil
}

// Provide puts an already loaded activity into the cache, so that Get does
// not read it from the store. The activity must already be listed.
func (l *List) Provide(a *activity.Activity) error {
	if l.index(a.ID) < 0 {
		return fmt.Errorf("provide: %w: %s", ErrNotFound, a.ID)
	}
	l.loaded[a.ID] = a
	return nil
}

// Add appends a new activity and saves its record.
func (l *List) Add(a *activity.Activity) error {
	if l.index(a.ID) >= 0 {
		return fmt.Errorf("add %s: duplicate activity id", a.ID)
	}
	if l.store != nil {
		if err := l.store.SaveActivity(a.Record()); err != nil {
			return fmt.Errorf("add %s: %w", a.ID, err)
		}
	}
	l.summaries = append(l.summaries, a.Unload())
	return l.Provide(a)
}

// Update saves a loaded activity after it has been edited and regenerates
// its summary.
func (l *List) Update(id uuid.UUID) error {
	a, ok := l.loaded[id]
	i := l.index(id)
	if !ok || i < 0 {
		return fmt.Errorf("update: %w: %s", ErrNotFound, id)
	}
	if l.store != nil {
		if err := l.store.SaveActivity(a.Record()); err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
	}
	l.summaries[i] = a.Unload()
	return nil
}

// Remove deletes an activity from the list, the cache and the store.
func (l *List) Remove(id uuid.UUID) error {
	i := l.index(id)
	if i < 0 {
		return fmt.Errorf("remove: %w: %s", ErrNotFound, id)
	}
	if l.store != nil {
		if err := l.store.DeleteActivity(id); err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
	}
	l.summaries = slices.Delete(l.summaries, i, i+1)
	delete(l.loaded, id)
	return nil
}

// Save persists the summary list. Full activities are saved as they are
// added or updated.
func (l *List) Save() error {
	if l.store == nil {
		return ErrNoStore
	}
	if err := l.store.SaveSummaries(l.summaries); err != nil {
		return fmt.Errorf("save activity list: %w", err)
	}
	return nil
}
