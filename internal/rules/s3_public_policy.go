package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

const (
	annotationS3Secure       = "S3 bucket is configured securely."
	annotationS3PublicPolicy = "Bucket has a public policy."
)

// DetectS3PublicPolicy reports whether doc exposes the bucket publicly.
// Under MatchStrict a statement counts only with a wildcard principal and
// Effect "Allow"; under MatchPrincipal the wildcard principal alone counts.
func DetectS3PublicPolicy(doc *PolicyDocument, mode MatchMode) bool {
	return doc.PublicStatement(mode) >= 0
}

// DetectS3PublicPolicyText is DetectS3PublicPolicy over raw policy JSON.
// Text that does not parse as a policy falls back to a whitespace-normalized
// search for a wildcard principal, so a malformed but obviously public
// policy is never missed.
func DetectS3PublicPolicyText(text string, mode MatchMode) bool {
	doc, err := ParsePolicy([]byte(text))
	if err != nil {
		return containsWildcardPrincipal(text)
	}
	return DetectS3PublicPolicy(doc, mode)
}

// DetectS3Compliance returns the verdict for a bucket given its Block Public
// Access flags and its policy (nil when the bucket has none).
// Any disabled flag is NON_COMPLIANT regardless of the policy. Otherwise the
// first wildcard-principal Allow statement is NON_COMPLIANT; a Deny statement
// never counts as exposure.
func DetectS3Compliance(pab models.PublicAccessBlock, policy *PolicyDocument) models.Verdict {
	if off := pab.DisabledFlags(); len(off) > 0 {
		return models.NewVerdict(models.NonCompliant, fmt.Sprintf(
			"Block Public Access is not fully enabled: %s disabled.", strings.Join(off, ", ")))
	}
	if DetectS3PublicPolicy(policy, MatchStrict) {
		return models.NewVerdict(models.NonCompliant, annotationS3PublicPolicy)
	}
	return models.NewVerdict(models.Compliant, annotationS3Secure)
}

// S3PublicPolicyRule evaluates an S3 bucket for disabled Block Public Access
// flags or a public bucket policy.
type S3PublicPolicyRule struct{}

func (r S3PublicPolicyRule) ID() models.RuleID    { return models.RuleS3PublicPolicy }
func (r S3PublicPolicyRule) Name() string         { return "S3 Bucket With Public Policy" }
func (r S3PublicPolicyRule) ResourceType() string { return models.ResourceTypeS3Bucket }

// Evaluate reads the bucket's Block Public Access configuration and, only
// when every flag is on, its policy. A missing configuration means all flags
// are off; a missing policy means "no policy". Any other read failure is
// NON_COMPLIANT.
func (r S3PublicPolicyRule) Evaluate(ctx context.Context, rc RuleContext) models.Verdict {
	if rc.Buckets == nil {
		return failClosed(errors.New("no object-store reader configured"))
	}
	bucket := rc.Item.ComplianceResourceID()

	pab, err := rc.Buckets.GetPublicAccessBlock(ctx, bucket)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return failClosed(fmt.Errorf("get public access block for %s: %w", bucket, err))
	}
	if !pab.AllEnabled() {
		return DetectS3Compliance(pab, nil)
	}

	text, err := rc.Buckets.GetPolicy(ctx, bucket)
	if errors.Is(err, models.ErrNotFound) {
		return DetectS3Compliance(pab, nil)
	}
	if err != nil {
		return failClosed(fmt.Errorf("get bucket policy for %s: %w", bucket, err))
	}
	doc, err := ParsePolicy([]byte(text))
	if err != nil {
		return failClosed(fmt.Errorf("bucket policy for %s: %w", bucket, err))
	}
	return DetectS3Compliance(pab, doc)
}
