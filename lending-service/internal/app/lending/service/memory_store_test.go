package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/repository"
)

// memoryStore хранилище в памяти с теми же условными записями, что и MongoDB репозитории
type memoryStore struct {
	mu      sync.Mutex
	seq     int
	items   map[string]entity.Item
	loans   map[string]entity.Loan
	reviews map[string]entity.Review

	failItemWrites bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		items:   make(map[string]entity.Item),
		loans:   make(map[string]entity.Loan),
		reviews: make(map[string]entity.Review),
	}
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

type memoryItems struct{ *memoryStore }
type memoryLoans struct{ *memoryStore }
type memoryReviews struct{ *memoryStore }

func (m memoryItems) Create(_ context.Context, item *entity.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = m.nextID("item")
	}
	m.items[item.ID] = *item
	return nil
}

func (m memoryItems) GetByID(_ context.Context, id string) (*entity.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	return &item, nil
}

func (m memoryItems) List(_ context.Context, f entity.ItemFilter) ([]entity.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entity.Item, 0)
	search := strings.ToLower(f.Search)
	for _, item := range m.items {
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Category), search) {
			continue
		}
		if f.AvailableOnly && !item.Availability {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (m memoryItems) ListUnavailable(_ context.Context) ([]entity.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entity.Item, 0)
	for _, item := range m.items {
		if !item.Availability {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m memoryItems) CountByLender(_ context.Context, lenderID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		if item.LenderID == lenderID {
			n++
		}
	}
	return n, nil
}

func (m memoryItems) Update(_ context.Context, item *entity.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.ID]
	if !ok {
		return repository.ErrItemNotFound
	}
	stored.Name = item.Name
	stored.Category = item.Category
	stored.Description = item.Description
	stored.Location = item.Location
	stored.Rating = item.Rating
	stored.ImageURL = item.ImageURL
	m.items[item.ID] = stored
	return nil
}

func (m memoryItems) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

func (m memoryItems) SetAvailability(_ context.Context, id string, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failItemWrites {
		return errors.New("item write failed")
	}
	item, ok := m.items[id]
	if !ok {
		return repository.ErrItemNotFound
	}
	if item.Availability == available {
		return repository.ErrAvailabilityConflict
	}
	item.Availability = available
	m.items[id] = item
	return nil
}

func (m memoryItems) EnsureIndexes(context.Context) error { return nil }

func (m memoryLoans) Create(_ context.Context, loan *entity.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan.ID == "" {
		loan.ID = m.nextID("loan")
	}
	m.loans[loan.ID] = *loan
	return nil
}

func (m memoryLoans) GetByID(_ context.Context, id string) (*entity.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[id]
	if !ok {
		return nil, repository.ErrLoanNotFound
	}
	return &loan, nil
}

func (m memoryLoans) filter(match func(entity.Loan) bool) []entity.Loan {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entity.Loan, 0)
	for _, loan := range m.loans {
		if match(loan) {
			result = append(result, loan)
		}
	}
	return result
}

func (m memoryLoans) ListByBorrower(_ context.Context, borrowerID string) ([]entity.Loan, error) {
	return m.filter(func(l entity.Loan) bool { return l.BorrowerID == borrowerID }), nil
}

func (m memoryLoans) ListByLender(_ context.Context, lenderID string) ([]entity.Loan, error) {
	return m.filter(func(l entity.Loan) bool { return l.LenderID == lenderID }), nil
}

func (m memoryLoans) ListActive(_ context.Context) ([]entity.Loan, error) {
	return m.filter(func(l entity.Loan) bool { return l.Status == entity.LoanStatusActive }), nil
}

func (m memoryLoans) HasActiveForItem(_ context.Context, itemID string) (bool, error) {
	active := m.filter(func(l entity.Loan) bool { return l.ItemID == itemID && l.Status == entity.LoanStatusActive })
	return len(active) > 0, nil
}

func (m memoryLoans) HasOpenForItem(_ context.Context, itemID string) (bool, error) {
	open := m.filter(func(l entity.Loan) bool {
		return l.ItemID == itemID && l.Status != entity.LoanStatusCompleted
	})
	return len(open) > 0, nil
}

func (m memoryLoans) TransitionStatus(_ context.Context, id string, from, to entity.LoanStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[id]
	if !ok {
		return repository.ErrLoanNotFound
	}
	if loan.Status != from {
		return repository.ErrStatusConflict
	}
	loan.Status = to
	loan.UpdatedAt = at
	switch to {
	case entity.LoanStatusActive:
		loan.ActualStartDate = &at
	case entity.LoanStatusCompleted:
		loan.ActualEndDate = &at
	}
	m.loans[id] = loan
	return nil
}

func (m memoryLoans) EnsureIndexes(context.Context) error { return nil }

func (m memoryReviews) Create(_ context.Context, review *entity.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.LoanID == review.LoanID {
			return repository.ErrDuplicateReview
		}
	}
	if review.ID == "" {
		review.ID = m.nextID("review")
	}
	m.reviews[review.ID] = *review
	return nil
}

func (m memoryReviews) GetByLoanID(_ context.Context, loanID string) (*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, review := range m.reviews {
		if review.LoanID == loanID {
			return &review, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (m memoryReviews) ListByLender(_ context.Context, lenderID string) ([]entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entity.Review, 0)
	for _, review := range m.reviews {
		if review.LenderID == lenderID {
			result = append(result, review)
		}
	}
	return result, nil
}

func (m memoryReviews) EnsureIndexes(context.Context) error { return nil }

func (m *memoryStore) setFailItemWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failItemWrites = fail
}
