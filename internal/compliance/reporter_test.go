package compliance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

type fakeSink struct {
	evals  []models.Evaluation
	tokens []string
	err    error
}

func (f *fakeSink) PutEvaluation(_ context.Context, eval models.Evaluation, token string) error {
	f.evals = append(f.evals, eval)
	f.tokens = append(f.tokens, token)
	return f.err
}

var captured = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestReport_S3UsesBucketName(t *testing.T) {
	sink := &fakeSink{}
	item := models.ConfigurationItem{
		ResourceType: models.ResourceTypeS3Bucket,
		ResourceID:   "arn-ish-id",
		ResourceName: "my-bucket",
		CaptureTime:  captured,
	}
	_, err := NewReporter(sink).Report(context.Background(), item,
		models.NewVerdict(models.Compliant, "S3 bucket is configured securely."), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.evals) != 1 {
		t.Fatalf("evaluations: got %d; want 1", len(sink.evals))
	}
	got := sink.evals[0]
	if got.ResourceID != "my-bucket" {
		t.Errorf("resource_id: got %q; want my-bucket", got.ResourceID)
	}
	if !got.OrderingTimestamp.Equal(captured) {
		t.Errorf("ordering timestamp: got %v; want %v", got.OrderingTimestamp, captured)
	}
	if sink.tokens[0] != "tok" {
		t.Errorf("token: got %q; want tok", sink.tokens[0])
	}
}

func TestReport_SecurityGroupUsesResourceID(t *testing.T) {
	sink := &fakeSink{}
	item := models.ConfigurationItem{
		ResourceType: models.ResourceTypeSecurityGroup,
		ResourceID:   "sg-1",
		ResourceName: "web",
		CaptureTime:  captured,
	}
	eval, err := NewReporter(sink).Report(context.Background(), item,
		models.NewVerdict(models.NonCompliant, "open"), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.ResourceID != "sg-1" {
		t.Errorf("resource_id: got %q; want sg-1", eval.ResourceID)
	}
}

func TestReport_SinkFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("ThrottlingException")}
	_, err := NewReporter(sink).Report(context.Background(), models.ConfigurationItem{
		ResourceType: models.ResourceTypeSecurityGroup, ResourceID: "sg-1",
	}, models.NewVerdict(models.Compliant, ""), "tok")
	if err == nil {
		t.Fatal("want error from failed submission")
	}
	if models.KindOf(err) != models.KindReportFailure {
		t.Errorf("kind: got %q; want %q", models.KindOf(err), models.KindReportFailure)
	}
	if len(sink.evals) != 1 {
		t.Errorf("submissions: got %d; want exactly 1 (no retry)", len(sink.evals))
	}
}

func TestBuildEvaluation_TruncatesAnnotation(t *testing.T) {
	long := strings.Repeat("a", 300)
	eval := BuildEvaluation(models.ConfigurationItem{}, models.NewVerdict(models.NonCompliant, long))
	if len(eval.Annotation) != MaxAnnotationLength {
		t.Errorf("annotation length: got %d; want %d", len(eval.Annotation), MaxAnnotationLength)
	}
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", 255) + "é"
	got := truncate(s, 256)
	if got != strings.Repeat("a", 255) {
		t.Errorf("truncate: got %d bytes; want 255", len(got))
	}
}
