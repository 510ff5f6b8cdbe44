package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/guardrail/internal/envelope"
	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
	"github.com/pankaj-dahiya-devops/guardrail/internal/rules"
)

const (
	annotationMissingScenario = "Missing 'scenario' parameter in rule."
	annotationLeftScope       = "Resource is no longer in scope of the rule."
	annotationDeleted         = "Resource has been deleted."
)

// Evaluate implements Engine. Exactly one evaluation is submitted per
// invocation, NOT_APPLICABLE included.
func (e *DefaultEngine) Evaluate(ctx context.Context, env *envelope.SnapshotEnvelope) models.Status {
	item := env.Item
	log := zerolog.Ctx(ctx).With().
		Str("scenario", env.Scenario).
		Str("message_type", env.MessageType).
		Str("resource_type", item.ResourceType).
		Str("resource_id", item.ComplianceResourceID()).
		Logger()
	ctx = log.WithContext(ctx)

	ruleID, verdict := e.verdict(ctx, env)
	log.Info().
		Str("compliance", string(verdict.Compliance)).
		Str("annotation", verdict.Annotation).
		Msg("resource evaluated")

	eval, err := e.reporter.Report(ctx, item, verdict, env.Event.ResultToken)
	if err != nil {
		return models.Failed(err)
	}
	e.recorder.ObserveEvaluation(ruleLabel(ruleID), string(eval.Compliance))

	return models.Status{
		Status:     models.StatusReported,
		Rule:       ruleID,
		ResourceID: eval.ResourceID,
		Compliance: eval.Compliance,
		Annotation: eval.Annotation,
	}
}

// verdict resolves the scenario and, when the item is in scope, runs the
// rule against live resource state. The returned rule id is empty when the
// scenario did not resolve.
func (e *DefaultEngine) verdict(ctx context.Context, env *envelope.SnapshotEnvelope) (models.RuleID, models.Verdict) {
	if env.Scenario == "" {
		zerolog.Ctx(ctx).Warn().Msg("rule parameters carry no scenario")
		return "", models.NewVerdict(models.NotApplicable, annotationMissingScenario)
	}
	rule, ok := e.registry.Lookup(models.RuleID(env.Scenario))
	if !ok {
		zerolog.Ctx(ctx).Warn().Msg("unknown scenario")
		return "", models.NewVerdict(models.NotApplicable, fmt.Sprintf("Unknown scenario '%s'.", env.Scenario))
	}

	item := env.Item
	switch {
	case env.Event.EventLeftScope:
		return rule.ID(), models.NewVerdict(models.NotApplicable, annotationLeftScope)
	case item.Deleted():
		return rule.ID(), models.NewVerdict(models.NotApplicable, annotationDeleted)
	case item.ResourceType != rule.ResourceType():
		return rule.ID(), models.NewVerdict(models.NotApplicable, fmt.Sprintf(
			"Resource type %s is not evaluated by scenario %s.", item.ResourceType, rule.ID()))
	}

	return rule.ID(), rule.Evaluate(ctx, rules.RuleContext{
		Item:    item,
		Buckets: e.buckets,
		Groups:  e.groups,
	})
}

func ruleLabel(id models.RuleID) string {
	if id == "" {
		return "none"
	}
	return string(id)
}
