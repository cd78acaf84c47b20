package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.BucketProcessed(true)
	r.GroupsEligible("b", "age", 3)
	r.Objects("b", false, 3, 2, 1)
	r.RunFinished(time.Now())
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}

func TestRecorder_Objects(t *testing.T) {
	r := NewRecorder()
	r.Objects("web", true, 4, 0, 0)
	r.Objects("web", false, 3, 2, 1)

	assert.Equal(t, 4.0, testutil.ToFloat64(r.objects.WithLabelValues("web", "planned")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.objects.WithLabelValues("web", "deleted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deleteErrors.WithLabelValues("web")))
}

func TestRecorder_Buckets(t *testing.T) {
	r := NewRecorder()
	r.BucketProcessed(false)
	r.BucketProcessed(false)
	r.BucketProcessed(true)

	expected := `
# HELP deploy_reaper_buckets_processed_total Buckets processed, partitioned by outcome.
# TYPE deploy_reaper_buckets_processed_total counter
deploy_reaper_buckets_processed_total{result="error"} 1
deploy_reaper_buckets_processed_total{result="ok"} 2
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "deploy_reaper_buckets_processed_total"))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.GroupsEligible("web", "count(keep=5)", 2)
	r.RunFinished(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "deploy_reaper.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `deploy_reaper_groups_eligible_total{bucket="web",policy="count(keep=5)"} 2`)
	assert.Contains(t, string(data), "deploy_reaper_last_run_timestamp_seconds 1.7e+09")
}

func TestRecorder_WriteTextfileError(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "m.prom"))
	assert.Error(t, err)
}
