package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики (общие для всех сервисов)
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
// Пример запроса PromQL: rate(http_requests_total{service="lending"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Labels: service, method, path
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "Duration of HTTP requests in seconds",
		// Бакеты для микросервисов: от 1ms до 10s
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики
// =============================================================================

// DbQueryDuration - время выполнения запросов к хранилищу (MongoDB, PostgreSQL)
var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "table"},
)

// DbConnectionsOpen - количество открытых соединений с БД
var DbConnectionsOpen = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "db_connections_open",
		Help: "Number of open database connections",
	},
	[]string{"service", "state"}, // state: idle, in_use
)

// DbErrors - счётчик ошибок базы данных
var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

// ItemLockAcquisitions - попытки захвата блокировки вещи
var ItemLockAcquisitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "item_lock_acquisitions_total",
		Help: "Total number of per-item lock acquisition attempts",
	},
	[]string{"service", "result"}, // acquired, busy, error
)

// RedisOperationDuration - время операций Redis
var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"}, // operation: setnx, eval, etc.
)

// RedisErrors - ошибки Redis
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

// KafkaMessagesProduced - отправленные сообщения
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

// KafkaMessagesConsumed - полученные сообщения
var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

// KafkaProduceDuration - время отправки сообщения
var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

// KafkaConsumeDuration - время обработки сообщения
var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // operation: produce, consume
)

// =============================================================================
// Business Метрики (выдача вещей)
// =============================================================================

// --- Lending Service ---

// LoanTransitions - переходы состояний займа
var LoanTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "loan_transitions_total",
		Help: "Total number of loan state transitions",
	},
	[]string{"transition", "result"}, // transition: request, start, end; result: ok, rejected, failed
)

// DegradedOperations - операции, завершённые с предупреждением
// (основная запись выполнена, вторичная нет)
var DegradedOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lending_degraded_operations_total",
		Help: "Total number of operations completed with a failed secondary write",
	},
	[]string{"operation"},
)

// ReviewsSubmitted - оставленные отзывы
var ReviewsSubmitted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "reviews_submitted_total",
		Help: "Total number of reviews submitted",
	},
)

// ReviewsRating - распределение оценок
var ReviewsRating = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "reviews_rating",
		Help:    "Distribution of review ratings",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
)

// ReconcileRuns - запуски сверки займов и доступности вещей
var ReconcileRuns = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconcile_runs_total",
		Help: "Total number of reconciliation runs",
	},
	[]string{"status"}, // success, failed
)

// ReconcileAnomalies - найденные расхождения
var ReconcileAnomalies = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reconcile_anomalies_total",
		Help: "Total number of loan/item inconsistencies found by reconciliation",
	},
	[]string{"kind", "result"}, // result: repaired, resolved, skipped, reported, failed
)

// --- Ledger Worker ---

// LedgerEventsRecorded - события, записанные в журнал
var LedgerEventsRecorded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_events_recorded_total",
		Help: "Total number of lending events recorded by the ledger worker",
	},
	[]string{"status"}, // success, duplicate, invalid, failed
)

// LedgerProcessingDuration - время обработки события
var LedgerProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "ledger_event_processing_duration_seconds",
		Help:    "Duration of lending event processing in the ledger worker",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	},
)
