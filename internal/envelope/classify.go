package envelope

import "github.com/pankaj-dahiya-devops/guardrail/internal/models"

type route struct {
	source    string
	eventName string
}

// routes is the fixed classification table.
var routes = map[route]models.ChangeKind{
	{source: "aws.s3", eventName: "PutBucketPolicy"}:                models.ChangeS3Policy,
	{source: "aws.ec2", eventName: "AuthorizeSecurityGroupIngress"}: models.ChangeSGIngress,
}

// Classify maps a change notification to the rule that applies to it, based
// solely on exact source and eventName equality. A nil envelope or missing
// fields classify as UNROUTABLE.
func Classify(env *ChangeEnvelope) models.ChangeKind {
	if env == nil {
		return models.ChangeUnroutable
	}
	if kind, ok := routes[route{source: env.Event.Source, eventName: env.EventName}]; ok {
		return kind
	}
	return models.ChangeUnroutable
}
