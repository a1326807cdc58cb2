package repository

import (
	"context"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
)

// ItemRepository определяет методы для работы с вещами в MongoDB
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	List(ctx context.Context, filter entity.ItemFilter) ([]entity.Item, error)
	ListUnavailable(ctx context.Context) ([]entity.Item, error)
	CountByLender(ctx context.Context, lenderID string) (int64, error)
	// Update перезаписывает редактируемые владельцем поля. Availability не трогает.
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id string) error
	// SetAvailability выполняет условную запись: флаг меняется, только если
	// текущее значение противоположно. Иначе ErrAvailabilityConflict.
	SetAvailability(ctx context.Context, id string, available bool) error
	EnsureIndexes(ctx context.Context) error
}

// LoanRepository определяет методы для работы с займами в MongoDB
type LoanRepository interface {
	Create(ctx context.Context, loan *entity.Loan) error
	GetByID(ctx context.Context, id string) (*entity.Loan, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]entity.Loan, error)
	ListByLender(ctx context.Context, lenderID string) ([]entity.Loan, error)
	ListActive(ctx context.Context) ([]entity.Loan, error)
	HasActiveForItem(ctx context.Context, itemID string) (bool, error)
	// HasOpenForItem проверяет, есть ли у вещи займ в статусе pending или active
	HasOpenForItem(ctx context.Context, itemID string) (bool, error)
	// TransitionStatus меняет статус по принципу compare-and-swap.
	// Если текущий статус не равен from, возвращает ErrStatusConflict.
	TransitionStatus(ctx context.Context, id string, from, to entity.LoanStatus, at time.Time) error
	EnsureIndexes(ctx context.Context) error
}

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByLoanID(ctx context.Context, loanID string) (*entity.Review, error)
	ListByLender(ctx context.Context, lenderID string) ([]entity.Review, error)
	EnsureIndexes(ctx context.Context) error
}

// TxRunner выполняет fn как одну единицу работы
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Transactional сообщает, откатывает ли WithinTransaction записи fn при ошибке
	Transactional() bool
}

// ItemLocker сериализует изменения одной вещи между экземплярами сервиса
type ItemLocker interface {
	Acquire(ctx context.Context, itemID string) (token string, err error)
	Release(ctx context.Context, itemID, token string) error
}
