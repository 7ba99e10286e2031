package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmx/internal/domain"
)

func descriptor(seq int, v domain.Variant) domain.Descriptor {
	return domain.Descriptor{Class: "PaymentTest", DisplayName: "test", Sequence: seq, Variant: v}
}

func TestListener(t *testing.T) {
	l := NewListener()

	passed := descriptor(0, 16)
	failed := descriptor(1, 17)
	ignored := descriptor(2, 17)

	l.Started(passed)
	l.Finished(passed)

	l.Started(failed)
	l.Failed(failed, errors.New("boom"))
	l.Finished(failed)

	l.Started(ignored)
	l.Ignored(ignored)

	assert.Equal(t, 1.0, testutil.ToFloat64(l.descriptors.WithLabelValues("passed", "16")))
	assert.Equal(t, 1.0, testutil.ToFloat64(l.descriptors.WithLabelValues("failed", "17")))
	assert.Equal(t, 1.0, testutil.ToFloat64(l.descriptors.WithLabelValues("ignored", "17")))
	assert.Equal(t, 0.0, testutil.ToFloat64(l.descriptors.WithLabelValues("failed", "16")))
	assert.Equal(t, 2, testutil.CollectAndCount(l.duration))
	assert.Empty(t, l.started)
	assert.Empty(t, l.failed)
}

func TestListener_WriteFile(t *testing.T) {
	l := NewListener()
	d := descriptor(0, 21)
	l.Started(d)
	l.Finished(d)
	l.RecordClassErrors(2)
	l.RecordRun("run-1", true)

	path := filepath.Join(t.TempDir(), "vmx.prom")
	require.NoError(t, l.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `vmx_descriptors_total{status="passed",variant="21"} 1`)
	assert.Contains(t, content, "vmx_class_errors_total 2")
	assert.Contains(t, content, `vmx_run_info{result="pass",run_id="run-1"} 1`)
	assert.Contains(t, content, "vmx_descriptor_duration_seconds_bucket")
}
