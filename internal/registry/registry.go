package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/hublink/internal/logger"
)

const (
	// DefaultKey is the store key the record list lives under.
	DefaultKey = "hub_connect_data"

	// DefaultMaxRecords caps the persisted list.
	DefaultMaxRecords = 2
)

// Store is the key/value backend the registry writes through.
// Get returns "" with a nil error for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Registry reads and writes the record list.
type Registry struct {
	store      Store
	key        string
	maxRecords int
	now        func() time.Time
	log        logger.Logger

	// mu serializes read-modify-write cycles from this process.
	mu sync.Mutex
}

// New creates a Registry over store. An empty key or a non-positive
// maxRecords takes the default.
func New(store Store, key string, maxRecords int) *Registry {
	if key == "" {
		key = DefaultKey
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &Registry{
		store:      store,
		key:        key,
		maxRecords: maxRecords,
		now:        time.Now,
		log:        logger.Noop(),
	}
}

// SetLogger sets the logger used for dropped or corrupt data.
func (r *Registry) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.Noop()
	}
	r.log = l
}

// SetClock overrides the time source used for defaults during normalization.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// MaxRecords returns the cap applied on Save.
func (r *Registry) MaxRecords() int {
	return r.maxRecords
}

// Key returns the store key.
func (r *Registry) Key() string {
	return r.key
}

// List returns the stored records, newest first. A value that is not a
// record list is logged and read as empty, so the next Save replaces it.
func (r *Registry) List(ctx context.Context) ([]Record, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.key, err)
	}

	records, err := Decode(raw, r.now())
	if err != nil {
		r.log.Warn("ignoring unreadable value under %s: %v", r.key, err)
		return []Record{}, nil
	}
	return records, nil
}

// Save normalizes list, truncates it to MaxRecords and writes it.
func (r *Registry) Save(ctx context.Context, list []Record) error {
	value, err := Encode(list, r.maxRecords, r.now())
	if err != nil {
		return err
	}
	if dropped := len(Normalize(list, r.now())) - r.maxRecords; dropped > 0 {
		r.log.Debug("truncating %d record(s) beyond the cap of %d", dropped, r.maxRecords)
	}
	if err := r.store.Set(ctx, r.key, value); err != nil {
		return fmt.Errorf("write %s: %w", r.key, err)
	}
	return nil
}

// Remove deletes the record for targetID. It reports whether a record was
// found; nothing is written when none was.
func (r *Registry) Remove(ctx context.Context, targetID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	rest, removed := Without(list, targetID)
	if !removed {
		return false, nil
	}
	return true, r.Save(ctx, rest)
}

// SetEnabled flips the Enabled flag of targetID's record.
func (r *Registry) SetEnabled(ctx context.Context, targetID int64, enabled bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	found := false
	for i := range list {
		if list[i].TargetID == targetID {
			list[i].Enabled = enabled
			now := r.now()
			list[i].UpdatedAt = &now
			found = true
		}
	}
	if !found {
		return false, nil
	}
	return true, r.Save(ctx, list)
}

// Close closes the underlying store.
func (r *Registry) Close() error {
	return r.store.Close()
}
