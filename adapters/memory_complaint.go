package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
	"github.com/manthansachdev12/Hackwave-pragyan/internal/complaintid"
)

// MemoryComplaintRepository is the in-memory complaint registry. It owns its
// ID generator so that generation and insertion happen under a single lock.
type MemoryComplaintRepository struct {
	mu         sync.RWMutex
	complaints map[string]*entities.Complaint // id -> complaint mapping
	order      []string                       // ids in submission order
	ids        *complaintid.Generator
	now        func() time.Time
	logger     *zap.Logger
}

// ComplaintRepositoryOption configures a MemoryComplaintRepository
type ComplaintRepositoryOption func(*MemoryComplaintRepository)

// WithIDGenerator replaces the default generator (sequence starting at 1)
func WithIDGenerator(g *complaintid.Generator) ComplaintRepositoryOption {
	return func(m *MemoryComplaintRepository) {
		m.ids = g
	}
}

// WithComplaintClock overrides the clock used for complaint timestamps
func WithComplaintClock(now func() time.Time) ComplaintRepositoryOption {
	return func(m *MemoryComplaintRepository) {
		m.now = now
	}
}

// NewMemoryComplaintRepository creates an empty complaint registry
func NewMemoryComplaintRepository(logger *zap.Logger, opts ...ComplaintRepositoryOption) *MemoryComplaintRepository {
	m := &MemoryComplaintRepository{
		complaints: make(map[string]*entities.Complaint),
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.ids == nil {
		m.ids = complaintid.New(complaintid.WithClock(m.now))
	}
	return m
}

// Submit implements ComplaintRepository interface
func (m *MemoryComplaintRepository) Submit(ctx context.Context, category, description, location string) (*entities.Complaint, error) {
	if strings.TrimSpace(category) == "" {
		return nil, errors.New("category cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.ids.Next(category)
	if _, exists := m.complaints[id]; exists {
		// Only possible if a generator was configured to restart its sequence
		return nil, fmt.Errorf("complaint id %s already assigned", id)
	}

	complaint := entities.NewComplaint(id, category, description, location, m.now())
	m.complaints[id] = complaint
	m.order = append(m.order, id)

	m.logger.Info("Complaint submitted",
		zap.String("complaint_id", id),
		zap.String("category", category),
		zap.String("location", location))

	complaintCopy := *complaint
	return &complaintCopy, nil
}

// Get implements ComplaintRepository interface
func (m *MemoryComplaintRepository) Get(ctx context.Context, id string) (*entities.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	complaint, exists := m.complaints[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrComplaintNotFound, id)
	}

	// Return a copy to prevent external modifications
	complaintCopy := *complaint
	return &complaintCopy, nil
}

// ListAll implements ComplaintRepository interface
func (m *MemoryComplaintRepository) ListAll(ctx context.Context) ([]*entities.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.Complaint, len(m.order))
	for i, id := range m.order {
		complaintCopy := *m.complaints[id]
		result[i] = &complaintCopy
	}

	return result, nil
}

// Recent implements ComplaintRepository interface
func (m *MemoryComplaintRepository) Recent(ctx context.Context, n int) ([]*entities.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 || n > len(m.order) {
		n = len(m.order)
	}

	result := make([]*entities.Complaint, 0, n)
	for _, id := range m.order[len(m.order)-n:] {
		complaintCopy := *m.complaints[id]
		result = append(result, &complaintCopy)
	}

	return result, nil
}

// AdvanceStatus implements ComplaintRepository interface
func (m *MemoryComplaintRepository) AdvanceStatus(ctx context.Context, id string, next entities.ComplaintStatus) (*entities.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	complaint, exists := m.complaints[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrComplaintNotFound, id)
	}

	previous := complaint.Status
	if err := complaint.Advance(next, m.now()); err != nil {
		return nil, err
	}

	m.logger.Info("Complaint status advanced",
		zap.String("complaint_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(next)))

	complaintCopy := *complaint
	return &complaintCopy, nil
}

// Count implements ComplaintRepository interface
func (m *MemoryComplaintRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.order), nil
}
