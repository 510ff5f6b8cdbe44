package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pankaj-dahiya-devops/guardrail/internal/envelope"
	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// Pipeline names, used as the "pipeline" metric label and log field.
const (
	PipelineRemediate = "remediate"
	PipelineEvaluate  = "evaluate"
	PipelineUnknown   = "unknown"
)

// Engine is the dispatch shell shared by every transport (Lambda, HTTP,
// replay). It turns one raw envelope into exactly one terminal Status.
//
// Engine must not call the AWS SDK directly; it delegates to the
// resource-admin and sink interfaces it was built with.
type Engine interface {
	// Handle never panics and never returns an error: every failure,
	// including a recovered panic, becomes a Status with status "error".
	Handle(ctx context.Context, raw json.RawMessage) models.Status

	// Remediate runs the reactive pipeline for a change notification.
	Remediate(ctx context.Context, env *envelope.ChangeEnvelope) models.Status

	// Evaluate runs the periodic pipeline for a configuration snapshot.
	Evaluate(ctx context.Context, env *envelope.SnapshotEnvelope) models.Status
}

// Recorder observes invocations. Implemented by metrics.Recorder.
type Recorder interface {
	ObserveInvocation(pipeline, status string, elapsed time.Duration)
	ObserveEvaluation(rule, compliance string)
	ObserveAction(action, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveInvocation(string, string, time.Duration) {}
func (nopRecorder) ObserveEvaluation(string, string)                {}
func (nopRecorder) ObserveAction(string, string)                    {}
