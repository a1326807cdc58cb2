package processor

import (
	"context"
	"time"

	"prestado/lending-service/internal/app/lending/service"
	"prestado/pkg/logger"

	"github.com/robfig/cron/v3"
)

const reconcileTimeout = 2 * time.Minute

// ReconcileScheduler периодически запускает сверку займов и доступности вещей.
// Следующий запуск пропускается, пока предыдущий не завершился.
type ReconcileScheduler struct {
	cron         *cron.Cron
	reconcileSvc service.ReconcileServiceInterface
}

// NewReconcileScheduler создает планировщик сверки
func NewReconcileScheduler(reconcileSvc service.ReconcileServiceInterface) *ReconcileScheduler {
	cronLog := cronLogger{}
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &ReconcileScheduler{
		cron:         c,
		reconcileSvc: reconcileSvc,
	}
}

// Start регистрирует задачу по расписанию и сразу выполняет один проход
func (s *ReconcileScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting reconcile scheduler")

	if _, err := s.cron.AddFunc(schedule, func() { s.runOnce(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	s.runOnce(ctx)

	return nil
}

func (s *ReconcileScheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, reconcileTimeout)
	defer cancel()

	if _, err := s.reconcileSvc.Reconcile(runCtx); err != nil {
		logger.Error().Err(err).Msg("Reconciliation failed")
	}
}

// Stop останавливает планировщик и ждёт завершения текущего прохода
func (s *ReconcileScheduler) Stop() {
	logger.Info().Msg("Stopping reconcile scheduler...")
	<-s.cron.Stop().Done()
	logger.Info().Msg("Reconcile scheduler stopped")
}

func (s *ReconcileScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger направляет внутренние сообщения cron в zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
