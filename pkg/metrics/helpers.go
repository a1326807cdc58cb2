package metrics

import (
	"time"
)

type RedisOperation string

const (
	RedisOpSetNX RedisOperation = "setnx"
	RedisOpEval  RedisOperation = "eval"
	RedisOpPing  RedisOperation = "ping"
)

type RedisTimer struct {
	service   string
	operation RedisOperation
	start     time.Time
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{
		service:   service,
		operation: op,
		start:     time.Now(),
	}
}

func (rt *RedisTimer) ObserveDuration() {
	RedisOperationDuration.WithLabelValues(rt.service, string(rt.operation)).Observe(time.Since(rt.start).Seconds())
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

func RecordLockAcquire(service, result string) {
	ItemLockAcquisitions.WithLabelValues(service, result).Inc()
}

func RecordKafkaMessageProduced(service, topic string, duration time.Duration) {
	KafkaMessagesProduced.WithLabelValues(service, topic).Inc()
	KafkaProduceDuration.WithLabelValues(service, topic).Observe(duration.Seconds())
}

func RecordKafkaMessageConsumed(service, topic, group string, processingDuration time.Duration) {
	KafkaMessagesConsumed.WithLabelValues(service, topic, group).Inc()
	KafkaConsumeDuration.WithLabelValues(service, topic).Observe(processingDuration.Seconds())
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}

type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{
		service: service,
		topic:   topic,
		start:   time.Now(),
	}
}

func (kt *KafkaProduceTimer) Success() {
	RecordKafkaMessageProduced(kt.service, kt.topic, time.Since(kt.start))
}

func (kt *KafkaProduceTimer) Error() {
	RecordKafkaError(kt.service, kt.topic, "produce")
}

type DbOperation string

const (
	DbOpSelect DbOperation = "select"
	DbOpInsert DbOperation = "insert"
	DbOpUpdate DbOperation = "update"
	DbOpDelete DbOperation = "delete"
	DbOpCount  DbOperation = "count"
)

// DbTimer измеряет длительность запроса к коллекции или таблице
type DbTimer struct {
	service   string
	operation DbOperation
	table     string
	start     time.Time
}

func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &DbTimer{
		service:   service,
		operation: op,
		table:     table,
		start:     time.Now(),
	}
}

func (dt *DbTimer) ObserveDuration() {
	DbQueryDuration.WithLabelValues(dt.service, string(dt.operation), dt.table).Observe(time.Since(dt.start).Seconds())
}

func RecordDbError(service string, op DbOperation) {
	DbErrors.WithLabelValues(service, string(op)).Inc()
}

// RecordDbPoolStats публикует состояние пула соединений
func RecordDbPoolStats(service string, idle, inUse int) {
	DbConnectionsOpen.WithLabelValues(service, "idle").Set(float64(idle))
	DbConnectionsOpen.WithLabelValues(service, "in_use").Set(float64(inUse))
}

// --- Бизнес-метрики ---

const (
	TransitionRequest = "request"
	TransitionStart   = "start"
	TransitionEnd     = "end"

	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

func RecordLoanTransition(transition, result string) {
	LoanTransitions.WithLabelValues(transition, result).Inc()
}

func RecordDegraded(operation string) {
	DegradedOperations.WithLabelValues(operation).Inc()
}

func RecordReviewSubmitted(rating int) {
	ReviewsSubmitted.Inc()
	ReviewsRating.Observe(float64(rating))
}

func RecordReconcileRun(status string) {
	ReconcileRuns.WithLabelValues(status).Inc()
}

func RecordReconcileAnomaly(kind, result string) {
	ReconcileAnomalies.WithLabelValues(kind, result).Inc()
}

func RecordLedgerEvent(status string, duration time.Duration) {
	LedgerEventsRecorded.WithLabelValues(status).Inc()
	LedgerProcessingDuration.Observe(duration.Seconds())
}
