package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

type mongoTxRunner struct {
	client  *mongo.Client
	enabled bool
}

// NewTxRunner возвращает исполнитель транзакций MongoDB.
// При enabled=false fn выполняется без сессии, а согласованность
// обеспечивается компенсацией в сервисе и периодической сверкой.
func NewTxRunner(client *mongo.Client, enabled bool) TxRunner {
	return &mongoTxRunner{client: client, enabled: enabled}
}

func (r *mongoTxRunner) Transactional() bool {
	return r.enabled && r.client != nil
}

func (r *mongoTxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.Transactional() {
		return fn(ctx)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
