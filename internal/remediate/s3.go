package remediate

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
	"github.com/pankaj-dahiya-devops/guardrail/internal/rules"
)

// RemediateS3 reverses a public bucket policy submitted by PutBucketPolicy.
//
// The policy is deleted first; only when that succeeds (or the policy is
// already gone) are all four Block Public Access flags enabled. A delete
// failure aborts before touching Block Public Access, so success is never
// reported with the policy still in place. A policy deleted but flags not
// set is a safe state for the next delivery to finish.
func (e *Executor) RemediateS3(ctx context.Context, bucket, policy string) Outcome {
	log := zerolog.Ctx(ctx).With().Str("bucket", bucket).Str("rule", string(models.RuleS3PublicPolicy)).Logger()

	if !rules.DetectS3PublicPolicyText(policy, e.mode) {
		log.Info().Msg("policy is not public; no action taken")
		return Outcome{Status: models.StatusIgnored, Reason: "Policy was not public"}
	}
	log.Info().Msg("public bucket policy detected; remediating")

	var out Outcome

	err := e.buckets.DeletePolicy(ctx, bucket)
	switch {
	case err == nil:
		e.record(&out, ActionDeleteBucketPolicy, bucket, OutcomeApplied)
		log.Info().Msg("deleted public bucket policy")
	case errors.Is(err, models.ErrNotFound):
		e.record(&out, ActionDeleteBucketPolicy, bucket, OutcomeAlreadyAbsent)
		log.Info().Msg("bucket policy already removed")
	default:
		e.record(&out, ActionDeleteBucketPolicy, bucket, OutcomeFailed)
		log.Error().Err(err).Msg("delete bucket policy failed; block public access not attempted")
		return failed(out, models.AdminFailure("delete bucket policy", err))
	}

	if err := e.buckets.PutPublicAccessBlock(ctx, bucket, models.FullPublicAccessBlock()); err != nil {
		e.record(&out, ActionPutPublicAccessBlock, bucket, OutcomeFailed)
		log.Error().Err(err).Msg("enable block public access failed")
		return failed(out, models.AdminFailure("put public access block", err))
	}
	e.record(&out, ActionPutPublicAccessBlock, bucket, OutcomeApplied)
	log.Info().Msg("enabled block public access")

	out.Status = models.StatusSuccess
	return out
}
