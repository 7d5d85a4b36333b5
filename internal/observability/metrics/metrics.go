package metrics

import "github.com/prometheus/client_golang/prometheus"

const defaultService = "prioritizacion"

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prioritizacion_logins_total",
			Help: "Applicant login attempts by result.",
		},
		[]string{"service", "result"},
	)

	rankingOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prioritizacion_ranking_operations_total",
			Help: "Ranking list/save/reset/submit calls by result.",
		},
		[]string{"service", "operation", "result"},
	)

	imports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prioritizacion_imports_total",
			Help: "Spreadsheet imports by result.",
		},
		[]string{"service", "result"},
	)

	importRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prioritizacion_import_rows_total",
			Help: "Rows committed by successful imports.",
		},
		[]string{"service"},
	)

	tokensIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prioritizacion_tokens_issued_total",
			Help: "Access token issuance during imports by result.",
		},
		[]string{"service", "result"},
	)
)

// Curried views used by the rest of the code. They are usable before
// MustRegister so tests can exercise instrumented code paths.
var (
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds prometheus.ObserverVec
	LoginsTotal                *prometheus.CounterVec
	RankingOperationsTotal     *prometheus.CounterVec
	ImportsTotal               *prometheus.CounterVec
	ImportRowsTotal            *prometheus.CounterVec
	TokensIssuedTotal          *prometheus.CounterVec
)

// Result labels.
const (
	ResultOK        = "ok"
	ResultRejected  = "rejected"
	ResultError     = "error"
	ResultLocked    = "locked"
	ResultExhausted = "exhausted"
)

func init() { curry(defaultService) }

func curry(serviceName string) {
	labels := prometheus.Labels{"service": serviceName}
	HTTPRequestsTotal = httpRequests.MustCurryWith(labels)
	HTTPRequestDurationSeconds = httpDuration.MustCurryWith(labels)
	LoginsTotal = logins.MustCurryWith(labels)
	RankingOperationsTotal = rankingOps.MustCurryWith(labels)
	ImportsTotal = imports.MustCurryWith(labels)
	ImportRowsTotal = importRows.MustCurryWith(labels)
	TokensIssuedTotal = tokensIssued.MustCurryWith(labels)
}

func MustRegister(serviceName string) {
	curry(serviceName)

	prometheus.MustRegister(
		httpRequests,
		httpDuration,
		logins,
		rankingOps,
		imports,
		importRows,
		tokensIssued,
	)
}
