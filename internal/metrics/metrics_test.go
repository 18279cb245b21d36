package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/songs", "200"))
	RecordAPIRequest("GET", "/api/v1/songs", "200", 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/songs", "200"))
	if after != before+1 {
		t.Fatalf("counter = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Fatalf("gauge = %v after inc", got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Fatalf("gauge = %v after dec", got)
	}
}

func TestOutcomeLabels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "success", want: "success"},
		{name: "failure", err: errors.New("boom"), want: "error"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			before := testutil.ToFloat64(EventsPublished.WithLabelValues("song.created", tc.want))
			RecordEventPublish("song.created", tc.err)
			if got := testutil.ToFloat64(EventsPublished.WithLabelValues("song.created", tc.want)); got != before+1 {
				t.Fatalf("%s counter = %v", tc.want, got)
			}
		})
	}
}

func TestSetCircuitBreakerState(t *testing.T) {
	SetCircuitBreakerState("recsvc", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("recsvc")); got != 2 {
		t.Fatalf("state = %v", got)
	}
}
