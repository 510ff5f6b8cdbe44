package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/guardrail/internal/envelope"
	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
	"github.com/pankaj-dahiya-devops/guardrail/internal/remediate"
)

const reasonUnsupportedEvent = "Unsupported event"

// Remediate implements Engine. Unroutable notifications are ignored without
// any resource-admin call.
func (e *DefaultEngine) Remediate(ctx context.Context, env *envelope.ChangeEnvelope) models.Status {
	kind := envelope.Classify(env)
	log := zerolog.Ctx(ctx).With().Str("change_kind", string(kind)).Logger()
	if env != nil {
		log = log.With().
			Str("source", env.Event.Source).
			Str("event_name", env.EventName).
			Str("event_id", env.Event.ID).
			Logger()
	}
	ctx = log.WithContext(ctx)

	switch kind {
	case models.ChangeS3Policy:
		change, err := envelope.DecodeS3PolicyChange(env)
		if err != nil {
			log.Error().Err(err).Msg("malformed PutBucketPolicy record")
			return models.Failed(err)
		}
		out := e.executor.RemediateS3(ctx, change.Bucket, change.Policy)
		return outcomeStatus(out, models.Status{Bucket: change.Bucket})

	case models.ChangeSGIngress:
		change, err := envelope.DecodeSGIngressChange(env)
		if err != nil {
			log.Error().Err(err).Msg("malformed AuthorizeSecurityGroupIngress record")
			return models.Failed(err)
		}
		out := e.executor.RemediateSG(ctx, change.GroupID, change.Rules)
		return outcomeStatus(out, models.Status{SecurityGroup: change.GroupID})

	default:
		log.Info().Msg("unsupported event; ignored")
		return models.Ignored(reasonUnsupportedEvent)
	}
}

// outcomeStatus converts an executor outcome into the terminal status. The
// target fields of success are only reported when the remediation succeeded.
func outcomeStatus(out remediate.Outcome, success models.Status) models.Status {
	switch out.Status {
	case models.StatusSuccess:
		success.Status = models.StatusSuccess
		return success
	case models.StatusIgnored:
		return models.Ignored(out.Reason)
	default:
		if out.Err != nil {
			return models.Failed(out.Err)
		}
		return models.Status{Status: models.StatusError, Reason: out.Reason}
	}
}
