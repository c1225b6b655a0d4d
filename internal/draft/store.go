package draft

import (
	"context"
	"sync"
	"time"

	"github.com/mmynk/jomsplit/internal/metrics"
)

// Store keeps open drafts in memory. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	drafts  map[string]*Draft
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics tracks the active gauge and expiry counter.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a store whose drafts live for ttl after their last update.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		drafts: make(map[string]*Draft),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// Put stores d, stamping its expiry.
func (s *Store) Put(d *Draft) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := d.Clone()
	c.ExpiresAt = s.now().Add(s.ttl)
	s.drafts[c.ID] = c
	s.gauge()
	return c.Clone()
}

// Get returns a copy of the draft. Drafts owned by another user are
// ErrForbidden; expired ones are ErrNotFound.
func (s *Store) Get(id, userID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

// Update applies fn to a copy of the draft and stores the result if fn
// succeeds. Updates extend the draft's expiry.
func (s *Store) Update(id, userID string, fn func(*Draft) error) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	if !d.Stage.Open() {
		return nil, ErrClosed
	}

	c := d.Clone()
	if err := fn(c); err != nil {
		return nil, err
	}
	now := s.now()
	c.UpdatedAt = now
	c.ExpiresAt = now.Add(s.ttl)
	s.drafts[id] = c
	return c.Clone(), nil
}

// BeginConfirm moves an open draft to StageConfirming and returns a copy of
// it as it was. Until EndConfirm or AbortConfirm, updates, abandons and
// other confirms of the draft fail with ErrClosed.
func (s *Store) BeginConfirm(id, userID string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	if !d.Stage.Open() {
		return nil, ErrClosed
	}
	if err := d.Claim(userID); err != nil {
		return nil, err
	}

	snapshot := d.Clone()
	c := d.Clone()
	c.previous = d.Stage
	c.Stage = StageConfirming
	c.UpdatedAt = s.now()
	c.ExpiresAt = c.UpdatedAt.Add(s.ttl)
	s.drafts[id] = c
	return snapshot, nil
}

// AbortConfirm puts a confirming draft back in the stage it had before
// BeginConfirm.
func (s *Store) AbortConfirm(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.drafts[id]; ok && d.Stage == StageConfirming {
		d.Stage = d.previous
		d.previous = ""
		d.ExpiresAt = s.now().Add(s.ttl)
	}
}

// EndConfirm removes a confirming draft once its receipt is stored.
func (s *Store) EndConfirm(id string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if d.Stage != StageConfirming {
		return nil, ErrClosed
	}
	delete(s.drafts, id)
	s.gauge()

	d.Stage = StageConfirmed
	d.previous = ""
	d.UpdatedAt = s.now()
	return d, nil
}

// Close removes an open draft, returning its final state with stage set.
func (s *Store) Close(id, userID string, stage Stage) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	if !d.Stage.Open() {
		return nil, ErrClosed
	}
	delete(s.drafts, id)
	s.gauge()

	d.Stage = stage
	d.UpdatedAt = s.now()
	return d, nil
}

// Len is the number of drafts held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

// Sweep removes expired drafts and returns how many it removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, d := range s.drafts {
		if d.Stage != StageConfirming && now.After(d.ExpiresAt) {
			delete(s.drafts, id)
			removed++
		}
	}
	if s.metrics != nil && removed > 0 {
		s.metrics.DraftsExpired.Add(float64(removed))
	}
	s.gauge()
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// lookup must be called with mu held.
func (s *Store) lookup(id, userID string) (*Draft, error) {
	d, ok := s.drafts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if d.Stage != StageConfirming && s.now().After(d.ExpiresAt) {
		delete(s.drafts, id)
		if s.metrics != nil {
			s.metrics.DraftsExpired.Inc()
		}
		s.gauge()
		return nil, ErrNotFound
	}
	if !d.accessibleBy(userID) {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *Store) gauge() {
	if s.metrics != nil {
		s.metrics.DraftsActive.Set(float64(len(s.drafts)))
	}
}
