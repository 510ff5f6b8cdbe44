package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

type fakeBuckets struct {
	policy      string
	policyErr   error
	pab         models.PublicAccessBlock
	pabErr      error
	policyReads int
}

func (f *fakeBuckets) GetPolicy(_ context.Context, _ string) (string, error) {
	f.policyReads++
	return f.policy, f.policyErr
}

func (f *fakeBuckets) GetPublicAccessBlock(_ context.Context, _ string) (models.PublicAccessBlock, error) {
	return f.pab, f.pabErr
}

func bucketItem() models.ConfigurationItem {
	return models.ConfigurationItem{ResourceType: models.ResourceTypeS3Bucket, ResourceID: "id-1", ResourceName: "my-bucket"}
}

const (
	allowAll   = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":"*","Action":"s3:GetObject"}]}`
	denyAll    = `{"Version":"2012-10-17","Statement":[{"Effect":"Deny","Principal":"*","Action":"s3:*"}]}`
	allowOwner = `{"Statement":{"Effect":"Allow","Principal":{"AWS":"arn:aws:iam::111122223333:root"}}}`
)

func TestS3PublicPolicyRule_ID(t *testing.T) {
	r := S3PublicPolicyRule{}
	if r.ID() != "S3_PUBLIC_POLICY" {
		t.Error("unexpected rule ID")
	}
	if r.ResourceType() != "AWS::S3::Bucket" {
		t.Errorf("resource type: got %q", r.ResourceType())
	}
}

// ── DetectS3PublicPolicyText ─────────────────────────────────────────────────

func TestDetectS3PublicPolicyText(t *testing.T) {
	cases := []struct {
		name   string
		policy string
		strict bool
		loose  bool
	}{
		{"allow star", allowAll, true, true},
		{"deny star", denyAll, false, true},
		{"owner only", allowOwner, false, false},
		{"aws star object", `{"Statement":[{"Effect":"Allow","Principal":{"AWS":"*"}}]}`, true, true},
		{"aws list with star", `{"Statement":[{"Effect":"Allow","Principal":{"AWS":["arn:aws:iam::1:root","*"]}}]}`, true, true},
		{"string wrapped", `"{\"Statement\":[{\"Effect\":\"Allow\",\"Principal\":\"*\"}]}"`, true, true},
		{"spaced unparseable", "{\"Statement\": [{\"Principal\" :  \"*\" ", true, true},
		{"unparseable private", `{"Statement": [`, false, false},
	}
	for _, c := range cases {
		if got := DetectS3PublicPolicyText(c.policy, MatchStrict); got != c.strict {
			t.Errorf("%s (strict): got %v; want %v", c.name, got, c.strict)
		}
		if got := DetectS3PublicPolicyText(c.policy, MatchPrincipal); got != c.loose {
			t.Errorf("%s (principal): got %v; want %v", c.name, got, c.loose)
		}
	}
}

// ── DetectS3Compliance ───────────────────────────────────────────────────────

func TestDetectS3Compliance_DisabledFlagsListed(t *testing.T) {
	pab := models.PublicAccessBlock{BlockPublicAcls: true, RestrictPublicBuckets: true}
	v := DetectS3Compliance(pab, nil)
	if v.Compliance != models.NonCompliant {
		t.Fatalf("compliance: got %q; want NON_COMPLIANT", v.Compliance)
	}
	want := "Block Public Access is not fully enabled: IgnorePublicAcls, BlockPublicPolicy disabled."
	if v.Annotation != want {
		t.Errorf("annotation: got %q; want %q", v.Annotation, want)
	}
}

func TestDetectS3Compliance_PolicyOnlyMattersWithAllFlagsOn(t *testing.T) {
	full := models.FullPublicAccessBlock()

	allow, _ := ParsePolicy([]byte(allowAll))
	if v := DetectS3Compliance(full, allow); v.Compliance != models.NonCompliant || v.Annotation != "Bucket has a public policy." {
		t.Errorf("allow *: got %+v", v)
	}
	deny, _ := ParsePolicy([]byte(denyAll))
	if v := DetectS3Compliance(full, deny); v.Compliance != models.Compliant {
		t.Errorf("deny *: got %q; want COMPLIANT", v.Compliance)
	}
	if v := DetectS3Compliance(full, nil); v.Compliance != models.Compliant || v.Annotation != "S3 bucket is configured securely." {
		t.Errorf("no policy: got %+v", v)
	}
}

// ── Evaluate ─────────────────────────────────────────────────────────────────

func TestS3PublicPolicyRule_Evaluate(t *testing.T) {
	cases := []struct {
		name    string
		buckets *fakeBuckets
		want    models.ComplianceType
		reads   int
	}{
		{"secure", &fakeBuckets{pab: models.FullPublicAccessBlock(), policy: allowOwner}, models.Compliant, 1},
		{"public policy", &fakeBuckets{pab: models.FullPublicAccessBlock(), policy: allowAll}, models.NonCompliant, 1},
		{"deny policy", &fakeBuckets{pab: models.FullPublicAccessBlock(), policy: denyAll}, models.Compliant, 1},
		{"no policy", &fakeBuckets{pab: models.FullPublicAccessBlock(), policyErr: models.ErrNotFound}, models.Compliant, 1},
		{"flag off", &fakeBuckets{pab: models.PublicAccessBlock{BlockPublicAcls: true, IgnorePublicAcls: true, RestrictPublicBuckets: true}}, models.NonCompliant, 0},
		{"no pab config", &fakeBuckets{pabErr: models.ErrNotFound}, models.NonCompliant, 0},
	}
	for _, c := range cases {
		v := S3PublicPolicyRule{}.Evaluate(context.Background(), RuleContext{Item: bucketItem(), Buckets: c.buckets})
		if v.Compliance != c.want {
			t.Errorf("%s: compliance: got %q (%s); want %q", c.name, v.Compliance, v.Annotation, c.want)
		}
		if c.buckets.policyReads != c.reads {
			t.Errorf("%s: policy reads: got %d; want %d", c.name, c.buckets.policyReads, c.reads)
		}
	}
}

func TestS3PublicPolicyRule_MissingConfigListsAllFlags(t *testing.T) {
	v := S3PublicPolicyRule{}.Evaluate(context.Background(), RuleContext{Item: bucketItem(), Buckets: &fakeBuckets{pabErr: models.ErrNotFound}})
	for _, flag := range []string{"BlockPublicAcls", "IgnorePublicAcls", "BlockPublicPolicy", "RestrictPublicBuckets"} {
		if !strings.Contains(v.Annotation, flag) {
			t.Errorf("annotation %q does not list %s", v.Annotation, flag)
		}
	}
}

func TestS3PublicPolicyRule_FailsClosed(t *testing.T) {
	full := models.FullPublicAccessBlock()
	for name, b := range map[string]*fakeBuckets{
		"pab error":    {pabErr: errors.New("AccessDenied")},
		"policy error": {pab: full, policyErr: errors.New("AccessDenied")},
		"bad policy":   {pab: full, policy: "{not json"},
	} {
		v := S3PublicPolicyRule{}.Evaluate(context.Background(), RuleContext{Item: bucketItem(), Buckets: b})
		if v.Compliance != models.NonCompliant {
			t.Errorf("%s: compliance: got %q; want NON_COMPLIANT", name, v.Compliance)
		}
		if !strings.HasPrefix(v.Annotation, "An error occurred during evaluation: ") {
			t.Errorf("%s: annotation: got %q", name, v.Annotation)
		}
	}

	v := S3PublicPolicyRule{}.Evaluate(context.Background(), RuleContext{Item: bucketItem()})
	if v.Compliance != models.NonCompliant {
		t.Errorf("no reader: compliance: got %q; want NON_COMPLIANT", v.Compliance)
	}
}
