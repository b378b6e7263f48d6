package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWorkloadGraph(t *testing.T) {
	t.Run("Chain", func(t *testing.T) {
		g, err := buildWorkloadGraph("chain")
		require.NoError(t, err)
		assert.Equal(t, 3, g.Len())
		assert.Equal(t, []string{"a"}, g.Entries())
	})

	t.Run("FanOutDefault", func(t *testing.T) {
		g, err := buildWorkloadGraph("fanout")
		require.NoError(t, err)
		assert.Equal(t, 5, g.Len())
		assert.Equal(t, 3, g.InDegrees()["gather"])
	})
}

func TestWorkloadStartStop(t *testing.T) {
	var m workloadManager

	req := httptest.NewRequest(http.MethodPost, "/workload/start?pattern=chain&rate_ms=50", nil)
	rec := httptest.NewRecorder()
	m.start(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "pattern=chain")

	// A second start while running conflicts.
	rec = httptest.NewRecorder()
	m.start(rec, httptest.NewRequest(http.MethodPost, "/workload/start", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	m.stop(rec, httptest.NewRequest(http.MethodPost, "/workload/stop", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Stopping twice is harmless.
	rec = httptest.NewRecorder()
	m.stop(rec, httptest.NewRequest(http.MethodPost, "/workload/stop", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
