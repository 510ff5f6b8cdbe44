package rules

import (
	"context"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// BucketPolicyReader is the read side of the object-store policy admin used
// by live-query evaluation. GetPolicy returns models.ErrNotFound when the
// bucket has no policy; GetPublicAccessBlock returns models.ErrNotFound when
// no Block Public Access configuration exists.
type BucketPolicyReader interface {
	GetPolicy(ctx context.Context, bucket string) (string, error)
	GetPublicAccessBlock(ctx context.Context, bucket string) (models.PublicAccessBlock, error)
}

// IngressRuleReader is the read side of the network ingress-rule admin.
type IngressRuleReader interface {
	DescribeIngressRules(ctx context.Context, groupID string) ([]models.IngressRule, error)
}

// RuleContext carries everything a rule needs to evaluate one resource from
// a configuration snapshot. Readers are only consulted by the rule whose
// resource type they serve; either may be nil in tests of the other rule.
type RuleContext struct {
	// Item is the configuration item that triggered the evaluation.
	Item models.ConfigurationItem

	// Buckets queries S3 bucket policy state.
	Buckets BucketPolicyReader

	// Groups queries EC2 security group ingress rules.
	Groups IngressRuleReader
}

// Rule is a single fixed detection procedure.
// Unlike the payload detectors, Evaluate queries live resource state through
// the readers in RuleContext. It must never mutate the resource, and it must
// fail closed: an evaluation that cannot be completed is NON_COMPLIANT.
type Rule interface {
	// ID returns the stable identifier, also used as the scenario selector.
	ID() models.RuleID

	// Name returns a short human-readable rule name.
	Name() string

	// ResourceType returns the AWS Config resource type the rule applies to.
	ResourceType() string

	// Evaluate returns the verdict for rc.Item.
	Evaluate(ctx context.Context, rc RuleContext) models.Verdict
}

// RuleRegistry manages the set of known rules.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// Lookup returns the rule registered under id.
	Lookup(id models.RuleID) (Rule, bool)
}

// failClosed turns an evaluation error into a NON_COMPLIANT verdict: a
// resource that cannot be verified is not assumed safe.
func failClosed(err error) models.Verdict {
	return models.NewVerdict(models.NonCompliant, "An error occurred during evaluation: "+err.Error())
}
