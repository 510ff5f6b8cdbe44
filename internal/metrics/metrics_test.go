package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_ObserveInvocation(t *testing.T) {
	r := NewRecorder()
	r.ObserveInvocation(PipelineRemediate, "success", 10*time.Millisecond)
	r.ObserveInvocation(PipelineRemediate, "success", 20*time.Millisecond)
	r.ObserveInvocation(PipelineEvaluate, "reported", time.Millisecond)

	if got := testutil.ToFloat64(r.invocations.WithLabelValues(PipelineRemediate, "success")); got != 2 {
		t.Errorf("remediate/success: got %v; want 2", got)
	}
	if got := testutil.ToFloat64(r.invocations.WithLabelValues(PipelineEvaluate, "reported")); got != 1 {
		t.Errorf("evaluate/reported: got %v; want 1", got)
	}
	if got := testutil.CollectAndCount(r.duration); got != 2 {
		t.Errorf("duration series: got %d; want 2", got)
	}
}

func TestRecorder_ObserveActionAndEvaluation(t *testing.T) {
	r := NewRecorder()
	r.ObserveAction("revoke_ingress", "applied")
	r.ObserveEvaluation("SG_UNRESTRICTED_SSH", "NON_COMPLIANT")

	if got := testutil.ToFloat64(r.remediationActions.WithLabelValues("revoke_ingress", "applied")); got != 1 {
		t.Errorf("actions: got %v; want 1", got)
	}
	if got := testutil.ToFloat64(r.evaluations.WithLabelValues("SG_UNRESTRICTED_SSH", "NON_COMPLIANT")); got != 1 {
		t.Errorf("evaluations: got %v; want 1", got)
	}
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	// Two recorders in one process must not panic on duplicate registration.
	a, b := NewRecorder(), NewRecorder()
	a.ObserveAction("x", "applied")
	if got := testutil.ToFloat64(b.remediationActions.WithLabelValues("x", "applied")); got != 0 {
		t.Errorf("second recorder: got %v; want 0", got)
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveInvocation(PipelineEvaluate, "reported", time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d; want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "guardrail_invocations_total") {
		t.Error("exposition missing guardrail_invocations_total")
	}
}
