package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrItemNotFound         = errors.New("item not found")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrStatusConflict       = errors.New("loan status changed concurrently")
	ErrAvailabilityConflict = errors.New("item availability changed concurrently")
	ErrDuplicateReview      = errors.New("review for this loan already exists")
	ErrItemLocked           = errors.New("item is locked by another operation")
)

const serviceName = "lending-service"

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
