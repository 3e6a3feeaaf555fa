package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for the service.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// TasksImported counts tasks actually created by import batches.
var TasksImported = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callops",
	Name:      "tasks_imported_total",
	Help:      "Tasks created by import batches, after dedup and suppression filtering",
})

// TasksSkipped counts skip actions by standardized reason.
var TasksSkipped = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "callops",
	Name:      "tasks_skipped_total",
	Help:      "Tasks skipped by operators, labeled by reason",
}, []string{"reason"})

// CallsCompleted counts completed call reports by call type.
var CallsCompleted = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "callops",
	Name:      "calls_completed_total",
	Help:      "Call reports submitted, labeled by call type",
}, []string{"call_type"})

// DuplicateTasksRemoved counts tasks deleted by dedup sweeps.
var DuplicateTasksRemoved = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callops",
	Name:      "duplicate_tasks_removed_total",
	Help:      "Pending tasks removed by deduplication sweeps",
})

// ProtocolsOpened counts protocol creations by origin.
var ProtocolsOpened = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "callops",
	Name:      "protocols_opened_total",
	Help:      "Protocols opened, labeled by origin",
}, []string{"origin"})

// ProtocolsClosed counts approved protocol closures.
var ProtocolsClosed = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "callops",
	Name:      "protocols_closed_total",
	Help:      "Protocols closed after supervisor approval",
})

// HTTPRequests counts handled requests by path, method and status.
var HTTPRequests = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "callops",
	Name:      "http_requests_total",
	Help:      "HTTP requests handled",
}, []string{"path", "method", "status"})
