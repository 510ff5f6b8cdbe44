package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is a resolved AWS profile with its SDK configuration and
// initialised service clients. It is built once at process start and shared
// by every invocation.
type ProfileConfig struct {
	// ProfileName is the name from ~/.aws/credentials or "default".
	// Inside Lambda it is always "default" (execution-role credentials).
	ProfileName string

	// AccountID is the resolved AWS account ID (via STS). Empty when the
	// caller identity could not be resolved.
	AccountID string

	// Region is the region every client is scoped to.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds the initialised service clients.
	Clients *ClientSet
}

// AWSClientProvider loads AWS configuration. It is the sole entry point for
// credential and region management.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig for the named profile and region.
	// Pass empty strings to use the default credential chain and region.
	LoadProfile(ctx context.Context, profile, region string) (*ProfileConfig, error)
}
