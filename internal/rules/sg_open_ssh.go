package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

const (
	sshPort  = 22
	anyIPv4  = "0.0.0.0/0"
	tcpProto = "tcp"

	annotationSGSecure  = "Security Group is configured securely."
	annotationSGOpenSSH = "Security Group has SSH (port 22) open to the world (0.0.0.0/0)."
)

// SSHMatch locates an unrestricted SSH permission inside a rule list.
type SSHMatch struct {
	// RuleIndex is the position of the matching rule in the scanned list.
	RuleIndex int
	// CIDR is the matching source range (always 0.0.0.0/0).
	CIDR string
	// Rule is the matching rule.
	Rule models.IngressRule
}

// Revocation builds the revoke action for exactly the matched protocol,
// port and CIDR. Other CIDRs of the same rule are left untouched.
func (m SSHMatch) Revocation() models.IngressRevocation {
	proto := m.Rule.Protocol
	if proto == "" {
		proto = tcpProto
	}
	return models.IngressRevocation{
		Protocol: proto,
		FromPort: sshPort,
		ToPort:   sshPort,
		CIDR:     m.CIDR,
	}
}

// DetectSGUnrestrictedSSH returns the first rule, in list order, whose port
// range is exactly 22-22 and that allows 0.0.0.0/0. Ranges merely containing
// 22 (e.g. 20-25) are not matched: this detector targets SSH-specific rules
// only, which keeps the revoke action narrow.
func DetectSGUnrestrictedSSH(rules []models.IngressRule) (SSHMatch, bool) {
	for i, rule := range rules {
		if !isExactSSHPort(rule) {
			continue
		}
		for _, cidr := range rule.CIDRs {
			if cidr == anyIPv4 {
				return SSHMatch{RuleIndex: i, CIDR: cidr, Rule: rule}, true
			}
		}
	}
	return SSHMatch{}, false
}

func isExactSSHPort(rule models.IngressRule) bool {
	return rule.FromPort != nil && rule.ToPort != nil &&
		*rule.FromPort == sshPort && *rule.ToPort == sshPort
}

// EvaluateSGCompliance returns the verdict for a security group's current
// ingress rules.
func EvaluateSGCompliance(rules []models.IngressRule) models.Verdict {
	if _, ok := DetectSGUnrestrictedSSH(rules); ok {
		return models.NewVerdict(models.NonCompliant, annotationSGOpenSSH)
	}
	return models.NewVerdict(models.Compliant, annotationSGSecure)
}

// SGUnrestrictedSSHRule evaluates an EC2 security group for SSH open to the
// IPv4 internet.
type SGUnrestrictedSSHRule struct{}

func (r SGUnrestrictedSSHRule) ID() models.RuleID    { return models.RuleSGUnrestrictedSSH }
func (r SGUnrestrictedSSHRule) Name() string         { return "Security Group With Unrestricted SSH" }
func (r SGUnrestrictedSSHRule) ResourceType() string { return models.ResourceTypeSecurityGroup }

// Evaluate describes the group's live ingress rules. A failed describe,
// including a group that cannot be found, is NON_COMPLIANT.
func (r SGUnrestrictedSSHRule) Evaluate(ctx context.Context, rc RuleContext) models.Verdict {
	if rc.Groups == nil {
		return failClosed(errors.New("no ingress-rule reader configured"))
	}
	groupID := rc.Item.ComplianceResourceID()
	rules, err := rc.Groups.DescribeIngressRules(ctx, groupID)
	if err != nil {
		return failClosed(fmt.Errorf("describe security group %s: %w", groupID, err))
	}
	return EvaluateSGCompliance(rules)
}
