package database

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

var ErrSessionClosed = errors.New("lead session already closed")

// MemoryLeadStore keeps leads in process memory. It backs STORAGE=memory and
// the handler tests.
type MemoryLeadStore struct {
	mu     sync.RWMutex
	nextID int64
	leads  map[int64]entity.Lead
	open   atomic.Int64
	now    func() time.Time
}

func NewMemoryLeadStore() *MemoryLeadStore {
	return &MemoryLeadStore{
		leads: make(map[int64]entity.Lead),
		now:   time.Now,
	}
}

func (s *MemoryLeadStore) Open(ctx context.Context) (entity.LeadSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.open.Add(1)
	return &memorySession{store: s}, nil
}

// OpenSessions reports sessions handed out and not yet closed.
func (s *MemoryLeadStore) OpenSessions() int64 {
	return s.open.Load()
}

func (s *MemoryLeadStore) FindByID(_ context.Context, id int64) (*entity.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return &lead, nil
}

func (s *MemoryLeadStore) FindAll(_ context.Context) ([]entity.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]entity.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		leads = append(leads, lead)
	}
	sort.Slice(leads, func(i, j int) bool { return leads[i].ID > leads[j].ID })
	return leads, nil
}

func (s *MemoryLeadStore) Create(_ context.Context, lead *entity.Lead) error {
	lead.Recalculate()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := s.now().UTC()
	lead.ID = s.nextID
	lead.CreatedAt = now
	lead.UpdatedAt = now
	s.leads[lead.ID] = *lead
	return nil
}

func (s *MemoryLeadStore) Update(_ context.Context, lead *entity.Lead) error {
	lead.Recalculate()

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.leads[lead.ID]
	if !ok {
		return entity.ErrLeadNotFound
	}
	lead.CreatedAt = current.CreatedAt
	lead.UpdatedAt = s.now().UTC()
	s.leads[lead.ID] = *lead
	return nil
}

func (s *MemoryLeadStore) Delete(_ context.Context, id int64) (*entity.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	delete(s.leads, id)
	return &lead, nil
}

func (s *MemoryLeadStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads = make(map[int64]entity.Lead)
	s.nextID = 0
	return nil
}

type memorySession struct {
	store  *MemoryLeadStore
	closed atomic.Bool
}

func (m *memorySession) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	if m.closed.Load() {
		return nil, ErrSessionClosed
	}
	return m.store.FindByID(ctx, id)
}

func (m *memorySession) FindAll(ctx context.Context) ([]entity.Lead, error) {
	if m.closed.Load() {
		return nil, ErrSessionClosed
	}
	return m.store.FindAll(ctx)
}

func (m *memorySession) Create(ctx context.Context, lead *entity.Lead) error {
	if m.closed.Load() {
		return ErrSessionClosed
	}
	return m.store.Create(ctx, lead)
}

func (m *memorySession) Update(ctx context.Context, lead *entity.Lead) error {
	if m.closed.Load() {
		return ErrSessionClosed
	}
	return m.store.Update(ctx, lead)
}

func (m *memorySession) Delete(ctx context.Context, id int64) (*entity.Lead, error) {
	if m.closed.Load() {
		return nil, ErrSessionClosed
	}
	return m.store.Delete(ctx, id)
}

func (m *memorySession) Close() error {
	if m.closed.Swap(true) {
		return ErrSessionClosed
	}
	m.store.open.Add(-1)
	return nil
}
