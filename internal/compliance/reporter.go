// Package compliance submits rule verdicts to the compliance sink.
package compliance

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// MaxAnnotationLength is the longest annotation the sink accepts.
const MaxAnnotationLength = 256

// Sink accepts compliance evaluations. Implemented by
// awssecurity.EvaluationSink.
type Sink interface {
	PutEvaluation(ctx context.Context, eval models.Evaluation, resultToken string) error
}

// Reporter turns verdicts into evaluations and submits them.
type Reporter struct {
	sink Sink
}

// NewReporter returns a Reporter submitting to sink.
func NewReporter(sink Sink) *Reporter {
	return &Reporter{sink: sink}
}

// BuildEvaluation keys the verdict to the item's compliance identity (the
// bucket name for S3 buckets) and orders it by the item's capture time.
func BuildEvaluation(item models.ConfigurationItem, verdict models.Verdict) models.Evaluation {
	return models.Evaluation{
		ResourceType:      item.ResourceType,
		ResourceID:        item.ComplianceResourceID(),
		Compliance:        verdict.Compliance,
		Annotation:        truncate(verdict.Annotation, MaxAnnotationLength),
		OrderingTimestamp: item.CaptureTime,
	}
}

// Report submits exactly one evaluation for item. Failures are not retried.
func (r *Reporter) Report(ctx context.Context, item models.ConfigurationItem, verdict models.Verdict, resultToken string) (models.Evaluation, error) {
	eval := BuildEvaluation(item, verdict)
	log := zerolog.Ctx(ctx).With().
		Str("resource_type", eval.ResourceType).
		Str("resource_id", eval.ResourceID).
		Str("compliance", string(eval.Compliance)).
		Logger()

	if err := r.sink.PutEvaluation(ctx, eval, resultToken); err != nil {
		log.Error().Err(err).Msg("submit evaluation failed")
		return eval, models.ReportFailure("put evaluation", err)
	}
	log.Info().Str("annotation", eval.Annotation).Msg("evaluation submitted")
	return eval, nil
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
