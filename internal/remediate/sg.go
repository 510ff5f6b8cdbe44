package remediate

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
	"github.com/pankaj-dahiya-devops/guardrail/internal/rules"
)

// RemediateSG revokes the first unrestricted SSH permission found in
// ingressRules, scoped to exactly its protocol, port and CIDR. Only one
// violation is corrected per invocation; any remaining ones are caught by the
// next delivery or the next periodic evaluation.
func (e *Executor) RemediateSG(ctx context.Context, groupID string, ingressRules []models.IngressRule) Outcome {
	log := zerolog.Ctx(ctx).With().Str("group_id", groupID).Str("rule", string(models.RuleSGUnrestrictedSSH)).Logger()

	match, ok := rules.DetectSGUnrestrictedSSH(ingressRules)
	if !ok {
		log.Info().Int("rules", len(ingressRules)).Msg("no unrestricted SSH rule in request; no action taken")
		return Outcome{Status: models.StatusIgnored, Reason: "Not an unrestricted SSH rule"}
	}

	rev := match.Revocation()
	log = log.With().
		Int("rule_index", match.RuleIndex).
		Str("protocol", rev.Protocol).
		Int32("from_port", rev.FromPort).
		Int32("to_port", rev.ToPort).
		Str("cidr", rev.CIDR).
		Logger()
	log.Info().Msg("unrestricted SSH rule detected; revoking")

	var out Outcome
	err := e.groups.RevokeIngressRule(ctx, groupID, rev)
	switch {
	case err == nil:
		e.record(&out, ActionRevokeIngress, groupID, OutcomeApplied)
		log.Info().Msg("revoked unrestricted SSH rule")
	case errors.Is(err, models.ErrNotFound):
		e.record(&out, ActionRevokeIngress, groupID, OutcomeAlreadyAbsent)
		log.Info().Msg("SSH rule already revoked")
	default:
		e.record(&out, ActionRevokeIngress, groupID, OutcomeFailed)
		log.Error().Err(err).Msg("revoke ingress rule failed")
		return failed(out, models.AdminFailure("revoke ingress rule", err))
	}

	out.Status = models.StatusSuccess
	return out
}
