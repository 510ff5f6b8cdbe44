package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	configtypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// EvaluationSink is the compliance-result sink backed by AWS Config.
type EvaluationSink struct {
	client awsConfigAPIClient
}

// PutEvaluation submits one evaluation correlated by resultToken. Evaluations
// AWS Config reports back as failed are an error.
func (s *EvaluationSink) PutEvaluation(ctx context.Context, ev models.Evaluation, resultToken string) error {
	in := &configsvc.PutEvaluationsInput{
		Evaluations: []configtypes.Evaluation{{
			ComplianceResourceType: aws.String(ev.ResourceType),
			ComplianceResourceId:   aws.String(ev.ResourceID),
			ComplianceType:         configtypes.ComplianceType(ev.Compliance),
			OrderingTimestamp:      aws.Time(ev.OrderingTimestamp),
		}},
		ResultToken: aws.String(resultToken),
	}
	if ev.Annotation != "" {
		in.Evaluations[0].Annotation = aws.String(ev.Annotation)
	}

	out, err := s.client.PutEvaluations(ctx, in)
	if err != nil {
		return fmt.Errorf("put evaluation for %s %s: %w", ev.ResourceType, ev.ResourceID, err)
	}
	if len(out.FailedEvaluations) > 0 {
		return fmt.Errorf("put evaluation for %s %s: %d evaluation(s) rejected", ev.ResourceType, ev.ResourceID, len(out.FailedEvaluations))
	}
	return nil
}
