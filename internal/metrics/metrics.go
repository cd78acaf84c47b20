package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "deploy_reaper"

// Recorder holds the counters for a single retention run. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	buckets        *prometheus.CounterVec
	groupsEligible *prometheus.CounterVec
	objects        *prometheus.CounterVec
	deleteErrors   *prometheus.CounterVec
	lastRun        prometheus.Gauge
}

// NewRecorder registers the run metrics on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		buckets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buckets_processed_total",
			Help:      "Buckets processed, partitioned by outcome.",
		}, []string{"result"}),
		groupsEligible: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_eligible_total",
			Help:      "Deployment groups selected for removal.",
		}, []string{"bucket", "policy"}),
		objects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "objects_total",
			Help:      "Objects matched under eligible groups, partitioned by action.",
		}, []string{"bucket", "action"}),
		deleteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delete_errors_total",
			Help:      "Objects that could not be deleted.",
		}, []string{"bucket"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.buckets, r.groupsEligible, r.objects, r.deleteErrors, r.lastRun)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) BucketProcessed(failed bool) {
	if r == nil {
		return
	}
	result := "ok"
	if failed {
		result = "error"
	}
	r.buckets.WithLabelValues(result).Inc()
}

func (r *Recorder) GroupsEligible(bucket, policy string, n int) {
	if r == nil {
		return
	}
	r.groupsEligible.WithLabelValues(bucket, policy).Add(float64(n))
}

// Objects records matched objects. In dry-run mode they are counted as
// planned rather than deleted.
func (r *Recorder) Objects(bucket string, dryRun bool, matched, deleted, failed int) {
	if r == nil {
		return
	}
	if dryRun {
		r.objects.WithLabelValues(bucket, "planned").Add(float64(matched))
		return
	}
	r.objects.WithLabelValues(bucket, "deleted").Add(float64(deleted))
	r.deleteErrors.WithLabelValues(bucket).Add(float64(failed))
}

func (r *Recorder) RunFinished(at time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the metrics in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
