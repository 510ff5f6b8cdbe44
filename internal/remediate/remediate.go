// Package remediate applies the corrective actions for a confirmed
// violation. Every action is a narrow reversal of exactly the detected
// condition and is safe to re-apply: a target that is already gone counts as
// success.
package remediate

import (
	"context"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
	"github.com/pankaj-dahiya-devops/guardrail/internal/rules"
)

// ObjectStoreAdmin is the object-store policy admin. Reads and deletes of a
// missing policy or Block Public Access configuration return
// models.ErrNotFound.
type ObjectStoreAdmin interface {
	GetPolicy(ctx context.Context, bucket string) (string, error)
	DeletePolicy(ctx context.Context, bucket string) error
	GetPublicAccessBlock(ctx context.Context, bucket string) (models.PublicAccessBlock, error)
	PutPublicAccessBlock(ctx context.Context, bucket string, pab models.PublicAccessBlock) error
}

// IngressAdmin is the network ingress-rule admin. Revoking a permission that
// does not exist returns models.ErrNotFound.
type IngressAdmin interface {
	DescribeIngressRules(ctx context.Context, groupID string) ([]models.IngressRule, error)
	RevokeIngressRule(ctx context.Context, groupID string, rev models.IngressRevocation) error
}

// ActionRecorder observes each corrective call. Implemented by
// metrics.Recorder.
type ActionRecorder interface {
	ObserveAction(action, outcome string)
}

// Action names.
const (
	ActionDeleteBucketPolicy   = "delete_bucket_policy"
	ActionPutPublicAccessBlock = "put_public_access_block"
	ActionRevokeIngress        = "revoke_ingress"
)

// Action outcomes.
const (
	OutcomeApplied       = "applied"
	OutcomeAlreadyAbsent = "already_absent"
	OutcomeFailed        = "failed"
)

// Action records one corrective call and how it ended.
type Action struct {
	Name    string `json:"name"`
	Target  string `json:"target"`
	Outcome string `json:"outcome"`
}

// Outcome is the terminal result of one remediation.
type Outcome struct {
	// Status is models.StatusSuccess, StatusIgnored or StatusError.
	Status string
	// Reason explains ignored and error outcomes.
	Reason string
	// Actions lists the corrective calls issued, in order.
	Actions []Action
	// Err is the failure behind an error outcome.
	Err error
}

// Executor runs remediations against the resource admins.
type Executor struct {
	buckets  ObjectStoreAdmin
	groups   IngressAdmin
	mode     rules.MatchMode
	recorder ActionRecorder
}

// Option configures an Executor.
type Option func(*Executor)

// WithMatchMode sets how bucket policies from change events are judged.
// The default is rules.MatchStrict.
func WithMatchMode(mode rules.MatchMode) Option {
	return func(e *Executor) { e.mode = mode }
}

// WithRecorder sets the observer notified of every corrective call.
func WithRecorder(r ActionRecorder) Option {
	return func(e *Executor) { e.recorder = r }
}

// NewExecutor returns an Executor issuing actions through buckets and groups.
func NewExecutor(buckets ObjectStoreAdmin, groups IngressAdmin, opts ...Option) *Executor {
	e := &Executor{buckets: buckets, groups: groups, mode: rules.MatchStrict}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) record(out *Outcome, name, target, outcome string) {
	out.Actions = append(out.Actions, Action{Name: name, Target: target, Outcome: outcome})
	if e.recorder != nil {
		e.recorder.ObserveAction(name, outcome)
	}
}

func failed(out Outcome, err error) Outcome {
	out.Status = models.StatusError
	out.Reason = err.Error()
	out.Err = err
	return out
}
