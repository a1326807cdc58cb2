package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventLoanRequested   = "LOAN_REQUESTED"
	EventLoanStarted     = "LOAN_STARTED"
	EventLoanCompleted   = "LOAN_COMPLETED"
	EventReviewSubmitted = "REVIEW_SUBMITTED"
)

// LoanEvent событие из топика lending-service
type LoanEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	LoanID     string    `json:"loan_id"`
	ItemID     string    `json:"item_id"`
	BorrowerID string    `json:"borrower_id"`
	LenderID   string    `json:"lender_id"`
	Status     string    `json:"status"`
	Degraded   bool      `json:"degraded,omitempty"`
	Rating     int       `json:"rating,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// LedgerEntry запись журнала. EventID - первичный ключ, повторная доставка
// того же события не создаёт вторую запись.
type LedgerEntry struct {
	EventID    uuid.UUID `json:"event_id" gorm:"type:uuid;primaryKey"`
	EventType  string    `json:"event_type" gorm:"type:varchar(32);not null"`
	LoanID     string    `json:"loan_id" gorm:"type:varchar(64);not null;index:idx_ledger_loan_time,priority:1"`
	ItemID     string    `json:"item_id" gorm:"type:varchar(64);not null"`
	BorrowerID string    `json:"borrower_id" gorm:"type:varchar(64)"`
	LenderID   string    `json:"lender_id" gorm:"type:varchar(64)"`
	Status     string    `json:"status" gorm:"type:varchar(16)"`
	Degraded   bool      `json:"degraded" gorm:"not null"`
	Rating     int       `json:"rating,omitempty" gorm:"type:smallint"`
	OccurredAt time.Time `json:"occurred_at" gorm:"not null;index:idx_ledger_loan_time,priority:2"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null"`
}

func (LedgerEntry) TableName() string {
	return "loan_ledger"
}

type HistoryResponse struct {
	LoanID  string        `json:"loan_id"`
	Entries []LedgerEntry `json:"entries"`
	Total   int           `json:"total"`
}
