package awssecurity

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// BucketAdmin is the object-store policy admin backed by S3.
type BucketAdmin struct {
	client s3APIClient
}

// GetPolicy returns the bucket policy JSON. A bucket without a policy
// returns models.ErrNotFound.
func (a *BucketAdmin) GetPolicy(ctx context.Context, bucket string) (string, error) {
	out, err := a.client.GetBucketPolicy(ctx, &s3svc.GetBucketPolicyInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return "", translate("get bucket policy "+bucket, err, codeNoSuchBucketPolicy)
	}
	return aws.ToString(out.Policy), nil
}

// DeletePolicy removes the bucket policy. Deleting a policy that is already
// gone returns models.ErrNotFound (S3 itself usually answers 204 in that
// case, which is success).
func (a *BucketAdmin) DeletePolicy(ctx context.Context, bucket string) error {
	_, err := a.client.DeleteBucketPolicy(ctx, &s3svc.DeleteBucketPolicyInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return translate("delete bucket policy "+bucket, err, codeNoSuchBucketPolicy)
	}
	return nil
}

// GetPublicAccessBlock returns the bucket's Block Public Access flags. A
// bucket without a configuration returns models.ErrNotFound.
func (a *BucketAdmin) GetPublicAccessBlock(ctx context.Context, bucket string) (models.PublicAccessBlock, error) {
	out, err := a.client.GetPublicAccessBlock(ctx, &s3svc.GetPublicAccessBlockInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return models.PublicAccessBlock{}, translate("get public access block "+bucket, err, codeNoSuchPublicAccessBlock)
	}
	cfg := out.PublicAccessBlockConfiguration
	if cfg == nil {
		return models.PublicAccessBlock{}, nil
	}
	return models.PublicAccessBlock{
		BlockPublicAcls:       aws.ToBool(cfg.BlockPublicAcls),
		IgnorePublicAcls:      aws.ToBool(cfg.IgnorePublicAcls),
		BlockPublicPolicy:     aws.ToBool(cfg.BlockPublicPolicy),
		RestrictPublicBuckets: aws.ToBool(cfg.RestrictPublicBuckets),
	}, nil
}

// PutPublicAccessBlock writes all four flags as given.
func (a *BucketAdmin) PutPublicAccessBlock(ctx context.Context, bucket string, pab models.PublicAccessBlock) error {
	_, err := a.client.PutPublicAccessBlock(ctx, &s3svc.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(pab.BlockPublicAcls),
			IgnorePublicAcls:      aws.Bool(pab.IgnorePublicAcls),
			BlockPublicPolicy:     aws.Bool(pab.BlockPublicPolicy),
			RestrictPublicBuckets: aws.Bool(pab.RestrictPublicBuckets),
		},
	})
	if err != nil {
		return translate("put public access block "+bucket, err)
	}
	return nil
}
