package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nicholas-fedor/n8n-backup/pkg/types"
)

var metrics *Metrics

// Run status values of the last-run status gauge.
const (
	statusValueSuccess = 0
	statusValueWarning = 1
	statusValueError   = 2
)

// errNoGatherer indicates metrics were registered with a registerer that cannot be gathered.
var errNoGatherer = errors.New("metrics registry cannot be gathered")

// Metric holds data points from one backup run.
type Metric struct {
	Selected    int                 // Containers selected for the run.
	Succeeded   int                 // Containers with both categories exported.
	Failed      int                 // Containers with at least one failed category.
	Skipped     int                 // Containers that were missing or stopped.
	Workflows   int                 // Workflows exported by succeeded containers.
	Credentials int                 // Credentials exported by succeeded containers.
	Status      types.OverallStatus // Overall run status.
	Archived    bool                // Whether an archive was produced.
	FinishedAt  time.Time           // End of the run.
}

// Metrics handles processing and exposing backup metrics.
type Metrics struct {
	channel      chan *Metric         // Channel for queuing metrics.
	pending      sync.WaitGroup       // Metrics queued but not yet applied.
	gatherer     prometheus.Gatherer  // Source for textfile export, nil if unavailable.
	selected     prometheus.Gauge     // Gauge for selected containers.
	succeeded    prometheus.Gauge     // Gauge for succeeded containers.
	failed       prometheus.Gauge     // Gauge for failed containers.
	skipped      prometheus.Gauge     // Gauge for skipped containers.
	items        *prometheus.GaugeVec // Gauge for exported items per category.
	lastRun      prometheus.Gauge     // Gauge for the last run's end time.
	lastStatus   prometheus.Gauge     // Gauge for the last run's status.
	lastArchived prometheus.Gauge     // Gauge for whether the last run produced an archive.
	total        prometheus.Counter   // Counter for total runs.
	aborted      prometheus.Counter   // Counter for runs stopped before exporting.
	dropped      prometheus.Counter   // Counter for dropped metrics.
	stopCh       chan struct{}        // Channel for shutdown signaling.
	shutdownOnce sync.Once            // Ensures shutdown is called only once.
	//nolint:containedctx
	ctx    context.Context    // Context for cancellation.
	cancel context.CancelFunc // Cancel function for the context.
}

// NewWithRegistry creates a new Metrics handler with a custom Prometheus registry.
//
// Parameters:
//   - registry: Prometheus registerer to use for metric registration. When it also
//     implements prometheus.Gatherer, WriteTextfile exports from it.
//
// Returns:
//   - (*Metrics, error): Metrics handler with Prometheus metrics and goroutine, or an error if registration fails.
func NewWithRegistry(registry prometheus.Registerer) (*Metrics, error) {
	// channelBufferSize sets the metrics channel capacity.
	const channelBufferSize = 10

	ctx, cancel := context.WithCancel(context.Background())

	metrics := &Metrics{
		selected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "n8n_backup_containers_selected",
			Help: "Number of containers selected during the last backup run",
		}),
		succeeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "n8n_backup_containers_succeeded",
			Help: "Number of containers exported completely during the last backup run",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "n8n_backup_containers_failed",
			Help: "Number of containers with a failed export during the last backup run",
		}),
		skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "n8n_backup_containers_skipped",
			Help: "Number of missing or stopped containers during the last backup run",
		}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "n8n_backup_items_exported",
			Help: "Number of items exported by succeeded containers during the last backup run",
		}, []string{"category"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "n8n_backup_last_run_timestamp_seconds",
			Help: "Unix time the last backup run finished",
		}),
		lastStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "n8n_backup_last_run_status",
			Help: "Status of the last backup run (0 success, 1 warning, 2 error)",
		}),
		lastArchived: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "n8n_backup_last_run_archived",
			Help: "Whether the last backup run produced an archive",
		}),
		total: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "n8n_backup_runs_total",
			Help: "Number of backup runs since n8n-backup started",
		}),
		aborted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "n8n_backup_runs_aborted_total",
			Help: "Number of backup runs stopped before exporting since n8n-backup started",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "n8n_backup_metrics_dropped_total",
			Help: "Number of metrics dropped due to full channel",
		}),
		channel: make(chan *Metric, channelBufferSize),
		stopCh:  make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	if gatherer, ok := registry.(prometheus.Gatherer); ok {
		metrics.gatherer = gatherer
	}

	metricsList := []prometheus.Collector{
		metrics.selected,
		metrics.succeeded,
		metrics.failed,
		metrics.skipped,
		metrics.items,
		metrics.lastRun,
		metrics.lastStatus,
		metrics.lastArchived,
		metrics.total,
		metrics.aborted,
		metrics.dropped,
	}
	for _, m := range metricsList {
		if err := registry.Register(m); err != nil {
			cancel()

			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	go metrics.HandleUpdate()

	return metrics, nil
}

// NewMetric creates a Metric from a run report.
//
// Parameters:
//   - report: Finished run report.
//
// Returns:
//   - *Metric: New metric instance.
func NewMetric(report types.Report) *Metric {
	if report == nil {
		panic("NewMetric: report is nil")
	}

	metric := &Metric{
		Selected:   len(report.All()),
		Succeeded:  len(report.Succeeded()),
		Failed:     len(report.Failed()),
		Skipped:    len(report.Skipped()),
		Status:     report.Status(),
		Archived:   report.ArchivePath() != "",
		FinishedAt: time.Now(),
	}

	for _, container := range report.Succeeded() {
		metric.Workflows += container.Result(types.Workflows).Count
		metric.Credentials += container.Result(types.Credentials).Count
	}

	return metric
}

// Register attempts to enqueue a metric for processing.
// A nil metric records a run that stopped before exporting.
// If the channel is full, the metric is dropped and the dropped counter is incremented.
//
// Parameters:
//   - metric: Metric to register.
func (m *Metrics) Register(metric *Metric) {
	m.pending.Add(1)

	select {
	case m.channel <- metric:
	default:
		m.pending.Done()
		m.dropped.Inc()
	}
}

// Default initializes or returns the singleton Metrics handler. It panics on registration failure, such as duplicate registration against the default registry.
//
// Returns:
//   - *Metrics: Metrics handler with Prometheus metrics and goroutine.
func Default() *Metrics {
	if metrics != nil {
		return metrics
	}

	var err error

	metrics, err = NewWithRegistry(prometheus.DefaultRegisterer)
	if err != nil {
		panic(err)
	}

	return metrics
}

// RegisterRun enqueues a run metric.
//
// Parameters:
//   - metric: Metric to register, nil for a run stopped before exporting.
func (m *Metrics) RegisterRun(metric *Metric) {
	m.Register(metric)
}

// Flush blocks until every queued metric has been applied.
func (m *Metrics) Flush() {
	m.pending.Wait()
}

// WriteTextfile writes the current metrics in the Prometheus text format to path.
//
// Queued metrics are applied first. The file is written atomically, suitable for
// the node exporter textfile collector.
//
// Parameters:
//   - path: Destination file.
//
// Returns:
//   - error: Non-nil if the registry cannot be gathered or the file cannot be written.
func (m *Metrics) WriteTextfile(path string) error {
	if m.gatherer == nil {
		return errNoGatherer
	}

	m.Flush()

	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the metrics processing goroutine.
// This method is idempotent and can be called multiple times safely.
func (m *Metrics) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.stopCh)
		m.cancel()
	})
}

// HandleUpdate processes metrics from the channel.
func (m *Metrics) HandleUpdate() {
	for {
		select {
		case change, ok := <-m.channel:
			if !ok {
				return
			}

			m.apply(change)
			m.pending.Done()
		case <-m.stopCh:
			return
		case <-m.ctx.Done():
			return
		}
	}
}

// apply updates the Prometheus collectors from one run.
func (m *Metrics) apply(change *Metric) {
	m.total.Inc()

	if change == nil {
		m.aborted.Inc()
		m.selected.Set(0)
		m.succeeded.Set(0)
		m.failed.Set(0)
		m.skipped.Set(0)
		m.items.WithLabelValues(string(types.Workflows)).Set(0)
		m.items.WithLabelValues(string(types.Credentials)).Set(0)
		m.lastRun.SetToCurrentTime()
		m.lastStatus.Set(statusValueError)
		m.lastArchived.Set(0)

		return
	}

	m.selected.Set(float64(change.Selected))
	m.succeeded.Set(float64(change.Succeeded))
	m.failed.Set(float64(change.Failed))
	m.skipped.Set(float64(change.Skipped))
	m.items.WithLabelValues(string(types.Workflows)).Set(float64(change.Workflows))
	m.items.WithLabelValues(string(types.Credentials)).Set(float64(change.Credentials))
	m.lastRun.Set(float64(change.FinishedAt.Unix()))
	m.lastStatus.Set(statusValue(change.Status))

	if change.Archived {
		m.lastArchived.Set(1)
	} else {
		m.lastArchived.Set(0)
	}
}

// statusValue maps an overall status to the status gauge value.
func statusValue(status types.OverallStatus) float64 {
	switch status {
	case types.OverallSuccess:
		return statusValueSuccess
	case types.OverallWarning:
		return statusValueWarning
	default:
		return statusValueError
	}
}
