package entity

import (
	"time"
)

// LoanStatus состояние займа. Переходы только pending → active → completed.
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
)

type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Item вещь, выставленная владельцем для выдачи.
// Availability меняет только движок займов (и сверка).
type Item struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Category     string    `json:"category" bson:"category"`
	Description  string    `json:"description" bson:"description"`
	Location     Location  `json:"location" bson:"location"`
	Availability bool      `json:"availability" bson:"availability"`
	Rating       int       `json:"rating" bson:"rating"` // Оценка состояния вещи от 1 до 5, не репутация владельца
	LenderID     string    `json:"lender_id" bson:"lender_id"`
	ImageURL     string    `json:"image_url" bson:"image_url"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type Loan struct {
	ID               string     `json:"id" bson:"_id"`
	ItemID           string     `json:"item_id" bson:"item_id"`
	BorrowerID       string     `json:"borrower_id" bson:"borrower_id"`
	LenderID         string     `json:"lender_id" bson:"lender_id"`
	ItemName         string     `json:"item_name" bson:"item_name"`
	Status           LoanStatus `json:"status" bson:"status"`
	PlannedStartDate time.Time  `json:"planned_start_date" bson:"planned_start_date"`
	PlannedEndDate   time.Time  `json:"planned_end_date" bson:"planned_end_date"`
	ActualStartDate  *time.Time `json:"actual_start_date" bson:"actual_start_date"`
	ActualEndDate    *time.Time `json:"actual_end_date" bson:"actual_end_date"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updated_at"`
}

// IsParticipant проверяет, что пользователь является заёмщиком или владельцем
func (l *Loan) IsParticipant(userID string) bool {
	return userID != "" && (l.BorrowerID == userID || l.LenderID == userID)
}

// Review отзыв заёмщика о владельце по завершённому займу. Не изменяется.
type Review struct {
	ID         string    `json:"id" bson:"_id"`
	LoanID     string    `json:"loan_id" bson:"loan_id"`
	LenderID   string    `json:"lender_id" bson:"lender_id"`
	ReviewerID string    `json:"reviewer_id" bson:"reviewer_id"`
	Rating     int       `json:"rating" bson:"rating"`
	Text       string    `json:"review" bson:"review"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Reputation вычисляется по отзывам при каждом запросе
type Reputation struct {
	LenderID      string  `json:"lender_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

type UserStats struct {
	UserID           string  `json:"user_id"`
	AverageRating    float64 `json:"average_rating"`
	ReviewCount      int     `json:"review_count"`
	ListedItemsCount int64   `json:"listed_items_count"`
}

// ItemFilter фильтры каталога. Пустые поля не ограничивают выборку.
type ItemFilter struct {
	Search        string
	MinRating     int
	MaxRating     int
	AvailableOnly bool
	LenderID      string
}

// ReviewPrompt данные для перехода к отзыву после завершения займа
type ReviewPrompt struct {
	LoanID     string `json:"loan_id"`
	LenderID   string `json:"lender_id"`
	ReviewerID string `json:"reviewer_id"`
	ItemName   string `json:"item_name"`
}

// EndLoanResult результат завершения займа. Degraded означает, что займ завершён,
// но вещь не удалось вернуть в доступные.
type EndLoanResult struct {
	Loan         *Loan         `json:"loan"`
	Degraded     bool          `json:"degraded"`
	Warning      string        `json:"warning,omitempty"`
	ReviewPrompt *ReviewPrompt `json:"review_prompt"`
}

const (
	EventLoanRequested   = "LOAN_REQUESTED"
	EventLoanStarted     = "LOAN_STARTED"
	EventLoanCompleted   = "LOAN_COMPLETED"
	EventReviewSubmitted = "REVIEW_SUBMITTED"
)

type LoanEvent struct {
	EventID    string     `json:"event_id"`
	EventType  string     `json:"event_type"`
	LoanID     string     `json:"loan_id"`
	ItemID     string     `json:"item_id"`
	BorrowerID string     `json:"borrower_id"`
	LenderID   string     `json:"lender_id"`
	Status     LoanStatus `json:"status"`
	Degraded   bool       `json:"degraded,omitempty"`
	Rating     int        `json:"rating,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

const (
	AnomalyActiveLoanItemAvailable = "active_loan_item_available"
	AnomalyItemUnavailableNoLoan   = "item_unavailable_without_loan"
	AnomalyMultipleActiveLoans     = "multiple_active_loans"
)

type Anomaly struct {
	Kind     string   `json:"kind"`
	ItemID   string   `json:"item_id"`
	LoanIDs  []string `json:"loan_ids,omitempty"`
	Repaired bool     `json:"repaired"`
}

type ReconcileReport struct {
	ActiveLoans int       `json:"active_loans"`
	Anomalies   []Anomaly `json:"anomalies"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}
