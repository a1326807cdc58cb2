package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRequestLoanHandler_Success(t *testing.T) {
	// Arrange
	s := newTestServer()
	start := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	loan := &entity.Loan{ID: "loan-1", ItemID: "item-1", BorrowerID: "borrower-1", LenderID: "lender-1", Status: entity.LoanStatusPending}

	s.loans.On("RequestLoan", mock.Anything, "borrower-1", mock.MatchedBy(func(req *entity.RequestLoanRequest) bool {
		return req.ItemID == "item-1" && req.PlannedStartDate.Equal(start)
	})).Return(loan, nil)

	// Act
	rec := s.do(t, http.MethodPost, "/loans", "borrower-1", entity.RequestLoanRequest{
		ItemID:           "item-1",
		LenderID:         "lender-1",
		PlannedStartDate: start,
		PlannedEndDate:   start.Add(72 * time.Hour),
	})

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)

	var got entity.Loan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, entity.LoanStatusPending, got.Status)
	assert.Nil(t, got.ActualStartDate)
	s.loans.AssertExpectations(t)
}

func TestRequestLoanHandler_ValidationError(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, http.MethodPost, "/loans", "borrower-1", map[string]string{"lender_id": "lender-1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ItemID is required", decodeError(t, rec))
	s.loans.AssertNotCalled(t, "RequestLoan", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestLoanHandler_InvalidBody(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, http.MethodPost, "/loans", "borrower-1", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestLoanHandler_Unauthorized(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, http.MethodPost, "/loans", "", entity.RequestLoanRequest{ItemID: "item-1"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLoanHandler_InvalidPeriod(t *testing.T) {
	s := newTestServer()
	start := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	s.loans.On("RequestLoan", mock.Anything, "borrower-1", mock.Anything).Return(nil, service.ErrInvalidPeriod)

	rec := s.do(t, http.MethodPost, "/loans", "borrower-1", entity.RequestLoanRequest{
		ItemID:           "item-1",
		LenderID:         "lender-1",
		PlannedStartDate: start,
		PlannedEndDate:   start,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "end date must be after start date")
}

func TestStartLoanHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "not found", err: service.ErrLoanNotFound, code: http.StatusNotFound},
		{name: "not pending", err: service.ErrLoanNotPending, code: http.StatusConflict},
		{name: "item unavailable", err: service.ErrItemUnavailable, code: http.StatusConflict},
		{name: "item busy", err: service.ErrItemBusy, code: http.StatusConflict},
		{name: "not participant", err: service.ErrNotParticipant, code: http.StatusForbidden},
		{name: "persistence", err: fmt.Errorf("%w: failed to start: %w", service.ErrPersistence, errors.New("mongo down")), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.loans.On("StartLoan", mock.Anything, "loan-1", "lender-1").Return(nil, tt.err)

			rec := s.do(t, http.MethodPost, "/loans/loan-1/start", "lender-1", nil)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestStartLoanHandler_PersistenceErrorIsHidden(t *testing.T) {
	s := newTestServer()
	s.loans.On("StartLoan", mock.Anything, "loan-1", "lender-1").
		Return(nil, fmt.Errorf("%w: failed to start: %w", service.ErrPersistence, errors.New("connection refused 10.0.0.5")))

	rec := s.do(t, http.MethodPost, "/loans/loan-1/start", "lender-1", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to start loan", decodeError(t, rec))
}

func TestStartLoanHandler_Success(t *testing.T) {
	s := newTestServer()
	now := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	s.loans.On("StartLoan", mock.Anything, "loan-1", "lender-1").
		Return(&entity.Loan{ID: "loan-1", Status: entity.LoanStatusActive, ActualStartDate: &now}, nil)

	rec := s.do(t, http.MethodPost, "/loans/loan-1/start", "lender-1", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got entity.Loan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, entity.LoanStatusActive, got.Status)
	require.NotNil(t, got.ActualStartDate)
	assert.True(t, now.Equal(*got.ActualStartDate))
}

func TestEndLoanHandler_DegradedResult(t *testing.T) {
	// Arrange
	s := newTestServer()
	result := &entity.EndLoanResult{
		Loan:     &entity.Loan{ID: "loan-1", Status: entity.LoanStatusCompleted},
		Degraded: true,
		Warning:  "loan completed, item availability will be restored later",
		ReviewPrompt: &entity.ReviewPrompt{
			LoanID: "loan-1", LenderID: "lender-1", ReviewerID: "borrower-1", ItemName: "Drill",
		},
	}
	s.loans.On("EndLoan", mock.Anything, "loan-1", "borrower-1").Return(result, nil)

	// Act
	rec := s.do(t, http.MethodPost, "/loans/loan-1/end", "borrower-1", nil)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)

	var got entity.EndLoanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Degraded)
	assert.NotEmpty(t, got.Warning)
	require.NotNil(t, got.ReviewPrompt)
	assert.Equal(t, "lender-1", got.ReviewPrompt.LenderID)
}

func TestEndLoanHandler_NotActive(t *testing.T) {
	s := newTestServer()
	s.loans.On("EndLoan", mock.Anything, "loan-1", "borrower-1").Return(nil, service.ErrLoanNotActive)

	rec := s.do(t, http.MethodPost, "/loans/loan-1/end", "borrower-1", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetLoanHandler_Forbidden(t *testing.T) {
	s := newTestServer()
	s.loans.On("GetLoan", mock.Anything, "loan-1", "stranger").Return(nil, service.ErrNotParticipant)

	rec := s.do(t, http.MethodGet, "/loans/loan-1", "stranger", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListLoansHandler_Roles(t *testing.T) {
	s := newTestServer()
	s.loans.On("ListLoansForBorrower", mock.Anything, "user-1").
		Return([]entity.Loan{{ID: "loan-1"}, {ID: "loan-2"}}, nil)
	s.loans.On("ListLoansForLender", mock.Anything, "user-1").
		Return([]entity.Loan{}, nil)

	rec := s.do(t, http.MethodGet, "/loans", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var asBorrower entity.LoanListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asBorrower))
	assert.Equal(t, 2, asBorrower.Total)

	rec = s.do(t, http.MethodGet, "/loans?role=lender", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var asLender entity.LoanListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asLender))
	assert.Equal(t, 0, asLender.Total)

	rec = s.do(t, http.MethodGet, "/loans?role=admin", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.loans.AssertExpectations(t)
}
