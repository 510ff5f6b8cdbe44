package models

import "time"

// ---------------------------------------------------------------------------
// S3
// ---------------------------------------------------------------------------

// PublicAccessBlock mirrors the four S3 Block Public Access flags of a bucket.
// The zero value (all flags off) is what a bucket without any configuration
// behaves like.
type PublicAccessBlock struct {
	BlockPublicAcls       bool `json:"block_public_acls"`
	IgnorePublicAcls      bool `json:"ignore_public_acls"`
	BlockPublicPolicy     bool `json:"block_public_policy"`
	RestrictPublicBuckets bool `json:"restrict_public_buckets"`
}

// FullPublicAccessBlock returns a configuration with all four flags enabled.
func FullPublicAccessBlock() PublicAccessBlock {
	return PublicAccessBlock{
		BlockPublicAcls:       true,
		IgnorePublicAcls:      true,
		BlockPublicPolicy:     true,
		RestrictPublicBuckets: true,
	}
}

// DisabledFlags returns the names of the flags that are off, in the fixed
// order BlockPublicAcls, IgnorePublicAcls, BlockPublicPolicy,
// RestrictPublicBuckets.
func (p PublicAccessBlock) DisabledFlags() []string {
	var off []string
	if !p.BlockPublicAcls {
		off = append(off, "BlockPublicAcls")
	}
	if !p.IgnorePublicAcls {
		off = append(off, "IgnorePublicAcls")
	}
	if !p.BlockPublicPolicy {
		off = append(off, "BlockPublicPolicy")
	}
	if !p.RestrictPublicBuckets {
		off = append(off, "RestrictPublicBuckets")
	}
	return off
}

// AllEnabled reports whether every flag is on.
func (p PublicAccessBlock) AllEnabled() bool {
	return len(p.DisabledFlags()) == 0
}

// ---------------------------------------------------------------------------
// EC2 security groups
// ---------------------------------------------------------------------------

// IngressRule is one inbound permission entry of a security group, whether it
// came from an AuthorizeSecurityGroupIngress request or a live
// DescribeSecurityGroups call. FromPort and ToPort are nil when the source
// omitted them (e.g. protocol "-1").
type IngressRule struct {
	Protocol string   `json:"protocol"`
	FromPort *int32   `json:"from_port,omitempty"`
	ToPort   *int32   `json:"to_port,omitempty"`
	CIDRs    []string `json:"cidrs"`
}

// IngressRevocation is the narrow revoke action for exactly one
// (protocol, port range, CIDR) triple. It never names more than one CIDR.
type IngressRevocation struct {
	Protocol string `json:"protocol"`
	FromPort int32  `json:"from_port"`
	ToPort   int32  `json:"to_port"`
	CIDR     string `json:"cidr"`
}

// ---------------------------------------------------------------------------
// AWS Config
// ---------------------------------------------------------------------------

// Configuration item statuses that mean the resource no longer exists.
const (
	ItemStatusResourceDeleted            = "ResourceDeleted"
	ItemStatusResourceDeletedNotRecorded = "ResourceDeletedNotRecorded"
)

// ConfigurationItem is the subset of an AWS Config configuration item the
// evaluation pipeline needs.
type ConfigurationItem struct {
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	ResourceName string    `json:"resource_name,omitempty"`
	CaptureTime  time.Time `json:"capture_time"`
	Status       string    `json:"status,omitempty"`
}

// ComplianceResourceID returns the identity AWS Config expects for this
// resource: the bucket name for S3 buckets, the resource id for everything
// else. Using the wrong field silently detaches the evaluation from the
// resource.
func (c ConfigurationItem) ComplianceResourceID() string {
	if c.ResourceType == ResourceTypeS3Bucket {
		return c.ResourceName
	}
	return c.ResourceID
}

// Deleted reports whether the item describes a resource that has been
// deleted since the rule was triggered.
func (c ConfigurationItem) Deleted() bool {
	return c.Status == ItemStatusResourceDeleted || c.Status == ItemStatusResourceDeletedNotRecorded
}

// Evaluation is the compliance record submitted to the compliance sink.
type Evaluation struct {
	ResourceType      string         `json:"resource_type"`
	ResourceID        string         `json:"resource_id"`
	Compliance        ComplianceType `json:"compliance"`
	Annotation        string         `json:"annotation"`
	OrderingTimestamp time.Time      `json:"ordering_timestamp"`
}
