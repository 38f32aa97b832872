package service

import (
	"context"
	"sort"
	"sync"

	"removaltracker/internal/model"
	"removaltracker/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memRemovalRepo is an in-memory RemovalRepository with the same version
// check as the gorm implementation. It hands out copies only.
type memRemovalRepo struct {
	mu        sync.Mutex
	removals  map[uuid.UUID]*model.Removal
	updateErr error
	updates   int
}

var _ repository.RemovalRepository = (*memRemovalRepo)(nil)

func newMemRemovalRepo() *memRemovalRepo {
	return &memRemovalRepo{removals: make(map[uuid.UUID]*model.Removal)}
}

func (m *memRemovalRepo) Create(_ context.Context, removal *model.Removal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removals[removal.ID] = cloneRemoval(removal)
	return nil
}

func (m *memRemovalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Removal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.removals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRemoval(r), nil
}

func (m *memRemovalRepo) Update(_ context.Context, removal *model.Removal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.removals[removal.ID]
	if !ok || stored.Version != removal.Version {
		return repository.ErrVersionConflict
	}
	removal.Version++
	m.removals[removal.ID] = cloneRemoval(removal)
	m.updates++
	return nil
}

func (m *memRemovalRepo) List(_ context.Context, filter repository.RemovalFilter) ([]model.Removal, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []model.Removal
	for _, r := range m.removals {
		if !filter.Visibility.Allows(r) {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		matched = append(matched, *cloneRemoval(r))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return []model.Removal{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memRemovalRepo) stored(id uuid.UUID) *model.Removal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRemoval(m.removals[id])
}

func cloneRemoval(r *model.Removal) *model.Removal {
	c := *r
	c.Items = append([]model.RemovalItem(nil), r.Items...)
	c.Approvals = append([]model.Approval(nil), r.Approvals...)
	c.ExtensionRequests = append([]model.ExtensionRequest(nil), r.ExtensionRequests...)
	if r.ReturnRecord != nil {
		rr := *r.ReturnRecord
		c.ReturnRecord = &rr
	}
	if r.DateTo != nil {
		d := *r.DateTo
		c.DateTo = &d
	}
	if r.DepartmentID != nil {
		d := *r.DepartmentID
		c.DepartmentID = &d
	}
	return &c
}

// MockAuditRepository is a mock implementation of repository.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

var _ repository.AuditRepository = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.AuditLog), args.Get(1).(int64), args.Error(2)
}

// inlineTx runs the callback without a database.
type inlineTx struct{}

func (inlineTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type stubRefs struct {
	departments map[uuid.UUID]model.Department
	reasons     map[uuid.UUID]model.RemovalReason
}

func (s *stubRefs) FindDepartment(_ context.Context, id uuid.UUID) (*model.Department, error) {
	d, ok := s.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (s *stubRefs) FindReason(_ context.Context, id uuid.UUID) (*model.RemovalReason, error) {
	r, ok := s.reasons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.RemovalEvent
}

func (p *recordingPublisher) PublishRemovalEvent(event model.RemovalEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) all() []model.RemovalEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.RemovalEvent(nil), p.events...)
}
