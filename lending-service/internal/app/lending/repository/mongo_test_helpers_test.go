package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func updateResponse(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func countResponse(ns string, n int64) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func loanDoc(id, itemID, status string) bson.D {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "item_id", Value: itemID},
		{Key: "borrower_id", Value: "borrower-1"},
		{Key: "lender_id", Value: "lender-1"},
		{Key: "item_name", Value: "Drill"},
		{Key: "status", Value: status},
		{Key: "planned_start_date", Value: now},
		{Key: "planned_end_date", Value: now.Add(48 * time.Hour)},
		{Key: "actual_start_date", Value: nil},
		{Key: "actual_end_date", Value: nil},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
	}
}
