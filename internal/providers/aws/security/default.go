// Package awssecurity implements the three resource collaborators of the
// posture engine over the AWS SDK v2: the S3 object-store policy admin, the
// EC2 network ingress-rule admin, and the AWS Config compliance-result sink.
//
// Provider-specific "does not exist" error codes are translated to
// models.ErrNotFound so the remediation and evaluation logic stays free of
// SDK types.
package awssecurity

import "github.com/aws/aws-sdk-go-v2/aws"

// Admins bundles the three collaborators built from one AWS config.
type Admins struct {
	Buckets *BucketAdmin
	Groups  *GroupAdmin
	Sink    *EvaluationSink
}

// NewAdmins returns collaborators wired to production AWS SDK clients.
func NewAdmins(cfg aws.Config) *Admins {
	return newAdminsWithFactory(cfg, newDefaultSecClients)
}

func newAdminsWithFactory(cfg aws.Config, f secClientFactory) *Admins {
	c := f(cfg)
	return &Admins{
		Buckets: &BucketAdmin{client: c.S3},
		Groups:  &GroupAdmin{client: c.EC2},
		Sink:    &EvaluationSink{client: c.Config},
	}
}
