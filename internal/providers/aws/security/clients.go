package awssecurity

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3APIClient is the narrow S3 interface used by the object-store admin.
// It covers bucket policy reads and deletes and Block Public Access.
type s3APIClient interface {
	GetBucketPolicy(ctx context.Context, params *s3svc.GetBucketPolicyInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketPolicyOutput, error)
	DeleteBucketPolicy(ctx context.Context, params *s3svc.DeleteBucketPolicyInput, optFns ...func(*s3svc.Options)) (*s3svc.DeleteBucketPolicyOutput, error)
	GetPublicAccessBlock(ctx context.Context, params *s3svc.GetPublicAccessBlockInput, optFns ...func(*s3svc.Options)) (*s3svc.GetPublicAccessBlockOutput, error)
	PutPublicAccessBlock(ctx context.Context, params *s3svc.PutPublicAccessBlockInput, optFns ...func(*s3svc.Options)) (*s3svc.PutPublicAccessBlockOutput, error)
}

// ec2SecurityAPIClient is the narrow EC2 interface used by the ingress-rule
// admin. Only security group description and ingress revocation are needed.
type ec2SecurityAPIClient interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2svc.DescribeSecurityGroupsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSecurityGroupsOutput, error)
	RevokeSecurityGroupIngress(ctx context.Context, params *ec2svc.RevokeSecurityGroupIngressInput, optFns ...func(*ec2svc.Options)) (*ec2svc.RevokeSecurityGroupIngressOutput, error)
}

// awsConfigAPIClient is the narrow AWS Config interface used by the
// compliance sink.
type awsConfigAPIClient interface {
	PutEvaluations(ctx context.Context, params *configsvc.PutEvaluationsInput, optFns ...func(*configsvc.Options)) (*configsvc.PutEvaluationsOutput, error)
}

// secClients bundles all AWS service clients used by the admins.
type secClients struct {
	S3     s3APIClient
	EC2    ec2SecurityAPIClient
	Config awsConfigAPIClient
}

// secClientFactory creates secClients from an AWS config.
// Injection point: tests replace this with a function returning fake clients.
type secClientFactory func(cfg aws.Config) *secClients

// newDefaultSecClients creates production AWS SDK clients from the given config.
func newDefaultSecClients(cfg aws.Config) *secClients {
	return &secClients{
		S3:     s3svc.NewFromConfig(cfg),
		EC2:    ec2svc.NewFromConfig(cfg),
		Config: configsvc.NewFromConfig(cfg),
	}
}
