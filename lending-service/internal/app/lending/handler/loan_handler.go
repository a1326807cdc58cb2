package handler

import (
	"net/http"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type LoanHandler struct {
	loanService service.LoanServiceInterface
	validator   *validator.Validate
}

func NewLoanHandler(loanService service.LoanServiceInterface) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		validator:   validator.New(),
	}
}

// RequestLoan создаёт займ в статусе pending. Заёмщик - текущий пользователь.
func (h *LoanHandler) RequestLoan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.RequestLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	loan, err := h.loanService.RequestLoan(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "Failed to request loan")
		return
	}

	c.JSON(http.StatusCreated, loan)
}

// StartLoan переводит займ в active
func (h *LoanHandler) StartLoan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.StartLoan(c.Request.Context(), c.Param("loan_id"), userID)
	if err != nil {
		respondError(c, err, "Failed to start loan")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// EndLoan завершает займ. При degraded=true займ завершён, но вещь
// вернётся в каталог только после сверки.
func (h *LoanHandler) EndLoan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.loanService.EndLoan(c.Request.Context(), c.Param("loan_id"), userID)
	if err != nil {
		respondError(c, err, "Failed to end loan")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLoan возвращает займ участнику
func (h *LoanHandler) GetLoan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	loan, err := h.loanService.GetLoan(c.Request.Context(), c.Param("loan_id"), userID)
	if err != nil {
		respondError(c, err, "Failed to get loan")
		return
	}

	c.JSON(http.StatusOK, loan)
}

// ListLoans возвращает займы текущего пользователя как заёмщика,
// с ?role=lender - как владельца
func (h *LoanHandler) ListLoans(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var (
		loans []entity.Loan
		err   error
	)
	switch c.DefaultQuery("role", "borrower") {
	case "borrower":
		loans, err = h.loanService.ListLoansForBorrower(c.Request.Context(), userID)
	case "lender":
		loans, err = h.loanService.ListLoansForLender(c.Request.Context(), userID)
	default:
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "role must be borrower or lender"})
		return
	}
	if err != nil {
		respondError(c, err, "Failed to list loans")
		return
	}

	c.JSON(http.StatusOK, entity.LoanListResponse{
		Loans: loans,
		Total: len(loans),
	})
}
