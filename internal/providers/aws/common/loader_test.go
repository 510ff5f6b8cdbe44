package common

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ── test doubles ─────────────────────────────────────────────────────────────

type fakeSTS struct {
	account *string
	err     error
}

func (f *fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: f.account}, nil
}

// newTestProvider returns a provider whose config loader records the number
// of options it received and returns cfg.
func newTestProvider(cfg aws.Config, loadErr error, stsClient STSClient, gotOpts *int) *DefaultAWSClientProvider {
	p := NewDefaultAWSClientProviderWithFactory(func(aws.Config) *ClientSet {
		return &ClientSet{STS: stsClient}
	})
	p.load = func(_ context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		*gotOpts = len(optFns)
		return cfg, loadErr
	}
	return p
}

// ── LoadProfile ──────────────────────────────────────────────────────────────

func TestLoadProfile_ResolvesAccount(t *testing.T) {
	var n int
	p := newTestProvider(aws.Config{Region: "eu-west-1"}, nil, &fakeSTS{account: aws.String("111122223333")}, &n)

	pc, err := p.LoadProfile(context.Background(), "prod", "eu-west-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.AccountID != "111122223333" {
		t.Errorf("account: got %q; want 111122223333", pc.AccountID)
	}
	if pc.ProfileName != "prod" {
		t.Errorf("profile: got %q; want prod", pc.ProfileName)
	}
	if n != 2 {
		t.Errorf("load options: got %d; want 2 (profile + region)", n)
	}
}

func TestLoadProfile_DefaultRegionFallback(t *testing.T) {
	var n int
	p := newTestProvider(aws.Config{}, nil, &fakeSTS{account: aws.String("1")}, &n)

	pc, err := p.LoadProfile(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.Region != "us-east-1" {
		t.Errorf("region: got %q; want us-east-1", pc.Region)
	}
	if pc.ProfileName != "default" {
		t.Errorf("profile: got %q; want default", pc.ProfileName)
	}
	if n != 0 {
		t.Errorf("load options: got %d; want 0", n)
	}
}

// TestLoadProfile_STSFailureIsNonFatal verifies that an execution role
// without sts:GetCallerIdentity still yields a usable profile.
func TestLoadProfile_STSFailureIsNonFatal(t *testing.T) {
	var n int
	p := newTestProvider(aws.Config{Region: "us-west-2"}, nil, &fakeSTS{err: errors.New("AccessDenied")}, &n)

	pc, err := p.LoadProfile(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.AccountID != "" {
		t.Errorf("account: got %q; want empty", pc.AccountID)
	}
}

func TestLoadProfile_LoadError(t *testing.T) {
	var n int
	p := newTestProvider(aws.Config{}, errors.New("no credentials"), &fakeSTS{}, &n)

	if _, err := p.LoadProfile(context.Background(), "missing", ""); err == nil {
		t.Fatal("want error when the SDK config cannot be loaded")
	}
}
