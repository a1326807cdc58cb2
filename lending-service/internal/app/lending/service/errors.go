package service

import (
	"errors"
	"fmt"
)

// Категории ошибок. Конкретные ошибки оборачивают категорию,
// handler сопоставляет категорию с HTTP статусом через errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrPersistence       = errors.New("persistence error")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
)

var (
	ErrInvalidPeriod    = fmt.Errorf("%w: end date must be after start date", ErrValidation)
	ErrSelfLoan         = fmt.Errorf("%w: borrower cannot borrow own item", ErrValidation)
	ErrLenderMismatch   = fmt.Errorf("%w: lender does not match", ErrValidation)
	ErrInvalidLoanData  = fmt.Errorf("%w: invalid loan data: missing id or itemId", ErrValidation)
	ErrInvalidRating    = fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	ErrMissingIdentity  = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrInvalidItemQuery = fmt.Errorf("%w: min rating must not exceed max rating", ErrValidation)
	ErrBlankItemName    = fmt.Errorf("%w: name and category must not be blank", ErrValidation)

	ErrLoanNotFound   = fmt.Errorf("loan %w", ErrNotFound)
	ErrItemNotFound   = fmt.Errorf("item %w", ErrNotFound)
	ErrReviewNotFound = fmt.Errorf("review %w", ErrNotFound)

	ErrLoanNotPending   = fmt.Errorf("%w: loan is not pending", ErrInvalidTransition)
	ErrLoanNotActive    = fmt.Errorf("%w: loan is not active", ErrInvalidTransition)
	ErrLoanNotCompleted = fmt.Errorf("%w: loan is not completed", ErrInvalidTransition)

	ErrItemUnavailable     = fmt.Errorf("%w: item is not available", ErrConflict)
	ErrItemBusy            = fmt.Errorf("%w: item is being updated, try again", ErrConflict)
	ErrReviewAlreadyExists = fmt.Errorf("%w: review for this loan already exists", ErrConflict)
	ErrItemHasOpenLoans    = fmt.Errorf("%w: item has pending or active loans", ErrConflict)

	ErrNotParticipant = fmt.Errorf("%w: user is not a participant of the loan", ErrForbidden)
	ErrNotBorrower    = fmt.Errorf("%w: only the borrower can review the lender", ErrForbidden)
	ErrNotItemOwner   = fmt.Errorf("%w: only the owner can change the item", ErrForbidden)
)

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrPersistence, op, err)
}
