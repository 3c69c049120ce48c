// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDecision(t *testing.T) {
	before := promtest.ToFloat64(GuardDecisions.WithLabelValues("add_supporter", "conflict"))

	RecordDecision("add_supporter", "conflict")
	RecordDecision("add_supporter", "conflict")

	after := promtest.ToFloat64(GuardDecisions.WithLabelValues("add_supporter", "conflict"))
	assert.Equal(t, before+2, after)
}

func TestObserveRequest(t *testing.T) {
	before := promtest.ToFloat64(httpRequests.WithLabelValues("GET", "404"))

	ObserveRequest("GET", http.StatusNotFound, 15*time.Millisecond)

	assert.Equal(t, before+1, promtest.ToFloat64(httpRequests.WithLabelValues("GET", "404")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordDecision("create_petition", "allow")
	AddImageBytes(128)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "petitions_guard_decisions_total")
	assert.Contains(t, string(body), "petitions_images_written_bytes_total")
}
