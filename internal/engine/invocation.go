package engine

import (
	"context"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
)

type invocationIDKey struct{}

// WithInvocationID attaches a caller-chosen invocation id to ctx, e.g. an
// HTTP request id. It takes precedence over the Lambda request id.
func WithInvocationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, invocationIDKey{}, id)
}

// InvocationID returns the id for the current invocation: one set with
// WithInvocationID, else the Lambda request id, else a fresh UUID.
func InvocationID(ctx context.Context) string {
	if id, ok := ctx.Value(invocationIDKey{}).(string); ok && id != "" {
		return id
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
