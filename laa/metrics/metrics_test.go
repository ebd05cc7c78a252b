package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laa-platform/laa-core/laa"
)

func TestRecorder_RecordDecision(t *testing.T) {
	r := NewRecorder()
	r.RecordDecision("ski-rental", "buy")
	r.RecordDecision("ski-rental", "buy")
	r.RecordDecision("ski-rental", "rent")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.DecisionsTotal.WithLabelValues("ski-rental", "buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DecisionsTotal.WithLabelValues("ski-rental", "rent")))
}

func TestRecorder_RecordError(t *testing.T) {
	r := NewRecorder()
	r.RecordError("scheduling", fmt.Errorf("bad input: %w", laa.ErrLengthMismatch))
	r.RecordError("search", laa.ErrEmptyInput)
	r.RecordError("search", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ErrorsTotal.WithLabelValues("scheduling", "length_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ErrorsTotal.WithLabelValues("search", "empty_input")))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "invalid_configuration", ErrorKind(fmt.Errorf("x: %w", laa.ErrInvalidConfiguration)))
	assert.Equal(t, "length_mismatch", ErrorKind(laa.ErrLengthMismatch))
	assert.Equal(t, "empty_input", ErrorKind(laa.ErrEmptyInput))
	assert.Equal(t, "other", ErrorKind(errors.New("boom")))
}

func TestRecorder_TrustAndRatio(t *testing.T) {
	r := NewRecorder()
	r.SetTrust(0.75)
	r.ObserveRatio("ski-rental", 1.2)
	r.ObserveRatio("ski-rental", 1.9)

	assert.Equal(t, 0.75, testutil.ToFloat64(r.AdaptiveTrust))
	assert.Equal(t, 1, testutil.CollectAndCount(r.CompetitiveRatio))
}

func TestRecorder_NilIsNoOp(t *testing.T) {
	var r *Recorder
	r.RecordDecision("ski-rental", "buy")
	r.RecordError("ski-rental", laa.ErrEmptyInput)
	r.SetTrust(1)
	r.ObserveRatio("ski-rental", 1)
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.RecordDecision("caching", "hit")

	path := filepath.Join(t.TempDir(), "laa.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `laa_decisions_total{engine="caching",outcome="hit"} 1`), string(data))
}

func TestRecorders_AreIsolated(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.RecordDecision("search", "found")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DecisionsTotal.WithLabelValues("search", "found")))
}
