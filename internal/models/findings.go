package models

// RuleID identifies one of the fixed detection procedures. The same IDs are
// used as the "scenario" selector in AWS Config rule parameters.
type RuleID string

const (
	RuleS3PublicPolicy    RuleID = "S3_PUBLIC_POLICY"
	RuleSGUnrestrictedSSH RuleID = "SG_UNRESTRICTED_SSH"
)

// ChangeKind is the Event Classifier's output for a change-notification
// envelope.
type ChangeKind string

const (
	ChangeS3Policy   ChangeKind = "S3_POLICY_CHANGE"
	ChangeSGIngress  ChangeKind = "SG_INGRESS_CHANGE"
	ChangeUnroutable ChangeKind = "UNROUTABLE"
)

// ComplianceType is the tri-state verdict reported to AWS Config.
type ComplianceType string

const (
	Compliant     ComplianceType = "COMPLIANT"
	NonCompliant  ComplianceType = "NON_COMPLIANT"
	NotApplicable ComplianceType = "NOT_APPLICABLE"
)

// AWS Config resource type names used by the rules.
const (
	ResourceTypeS3Bucket      = "AWS::S3::Bucket"
	ResourceTypeSecurityGroup = "AWS::EC2::SecurityGroup"
)

// Verdict is a compliance outcome together with the human-readable basis for
// it. Verdicts are never persisted; they are acted upon or reported within
// the same invocation.
type Verdict struct {
	Compliance ComplianceType `json:"compliance"`
	Annotation string         `json:"annotation"`
}

// NewVerdict is a small convenience constructor used by the rules.
func NewVerdict(c ComplianceType, annotation string) Verdict {
	return Verdict{Compliance: c, Annotation: annotation}
}
