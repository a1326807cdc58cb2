package repository

import (
	"context"
	"testing"
	"time"

	"prestado/lending-service/internal/app/lending/entity"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestLoanRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns id", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		loan := &entity.Loan{ItemID: "item-1", Status: entity.LoanStatusPending}
		err := repo.Create(context.Background(), loan)

		assert.NoError(mt, err)
		assert.NotEmpty(mt, loan.ID)
	})

	mt.Run("create propagates write error", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 1, Message: "boom"}))

		err := repo.Create(context.Background(), &entity.Loan{ItemID: "item-1"})

		assert.Error(mt, err)
	})

	mt.Run("get by id decodes nullable dates", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + loansCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, loanDoc("loan-1", "item-1", "pending")))

		loan, err := repo.GetByID(context.Background(), "loan-1")

		assert.NoError(mt, err)
		assert.Equal(mt, "loan-1", loan.ID)
		assert.Equal(mt, entity.LoanStatusPending, loan.Status)
		assert.Nil(mt, loan.ActualStartDate)
		assert.Nil(mt, loan.ActualEndDate)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + loansCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		loan, err := repo.GetByID(context.Background(), "missing")

		assert.ErrorIs(mt, err, ErrLoanNotFound)
		assert.Nil(mt, loan)
	})

	mt.Run("list by borrower", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + loansCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			loanDoc("loan-1", "item-1", "pending"),
			loanDoc("loan-2", "item-2", "completed"),
		))

		loans, err := repo.ListByBorrower(context.Background(), "borrower-1")

		assert.NoError(mt, err)
		assert.Len(mt, loans, 2)
	})

	mt.Run("list by borrower empty is not nil", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + loansCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		loans, err := repo.ListByBorrower(context.Background(), "nobody")

		assert.NoError(mt, err)
		assert.NotNil(mt, loans)
		assert.Empty(mt, loans)
	})

	mt.Run("has active for item", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + loansCollection
		mt.AddMockResponses(countResponse(ns, 1))

		active, err := repo.HasActiveForItem(context.Background(), "item-1")

		assert.NoError(mt, err)
		assert.True(mt, active)
	})

	mt.Run("has open for item", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + loansCollection
		mt.AddMockResponses(countResponse(ns, 0))

		open, err := repo.HasOpenForItem(context.Background(), "item-1")

		assert.NoError(mt, err)
		assert.False(mt, open)
	})

	mt.Run("transition status success", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		mt.AddMockResponses(updateResponse(1))

		err := repo.TransitionStatus(context.Background(), "loan-1",
			entity.LoanStatusPending, entity.LoanStatusActive, time.Now())

		assert.NoError(mt, err)
	})

	mt.Run("transition status conflict", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + loansCollection
		mt.AddMockResponses(updateResponse(0), countResponse(ns, 1))

		err := repo.TransitionStatus(context.Background(), "loan-1",
			entity.LoanStatusPending, entity.LoanStatusActive, time.Now())

		assert.ErrorIs(mt, err, ErrStatusConflict)
	})

	mt.Run("transition status missing loan", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		ns := mt.Coll.Database().Name() + "." + loansCollection
		mt.AddMockResponses(updateResponse(0), countResponse(ns, 0))

		err := repo.TransitionStatus(context.Background(), "missing",
			entity.LoanStatusActive, entity.LoanStatusCompleted, time.Now())

		assert.ErrorIs(mt, err, ErrLoanNotFound)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewLoanRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "createdCollectionAutomatically", Value: false}))

		assert.NoError(mt, repo.EnsureIndexes(context.Background()))
	})
}
