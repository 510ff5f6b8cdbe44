package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/guardrail/internal/compliance"
	"github.com/pankaj-dahiya-devops/guardrail/internal/envelope"
	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
	"github.com/pankaj-dahiya-devops/guardrail/internal/remediate"
	"github.com/pankaj-dahiya-devops/guardrail/internal/rules"
)

// Dependencies are the collaborators of DefaultEngine.
type Dependencies struct {
	// Buckets is the object-store policy admin.
	Buckets remediate.ObjectStoreAdmin

	// Groups is the network ingress-rule admin.
	Groups remediate.IngressAdmin

	// Sink receives compliance evaluations.
	Sink compliance.Sink

	// Registry resolves scenarios to rules. Defaults to the standard
	// registry.
	Registry rules.RuleRegistry

	// Recorder observes invocations. May be nil.
	Recorder Recorder

	// MatchMode selects how change-event policies are judged.
	MatchMode rules.MatchMode
}

// DefaultEngine is the production implementation of Engine.
type DefaultEngine struct {
	executor *remediate.Executor
	reporter *compliance.Reporter
	registry rules.RuleRegistry
	buckets  rules.BucketPolicyReader
	groups   rules.IngressRuleReader
	recorder Recorder
}

// NewDefaultEngine constructs a DefaultEngine wired to deps.
func NewDefaultEngine(deps Dependencies) *DefaultEngine {
	rec := deps.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	reg := deps.Registry
	if reg == nil {
		reg = rules.NewStandardRegistry()
	}
	mode := deps.MatchMode
	if mode == "" {
		mode = rules.MatchStrict
	}
	return &DefaultEngine{
		executor: remediate.NewExecutor(deps.Buckets, deps.Groups,
			remediate.WithMatchMode(mode),
			remediate.WithRecorder(rec),
		),
		reporter: compliance.NewReporter(deps.Sink),
		registry: reg,
		buckets:  deps.Buckets,
		groups:   deps.Groups,
		recorder: rec,
	}
}

// Handle implements Engine. It is the only place that recovers panics.
func (e *DefaultEngine) Handle(ctx context.Context, raw json.RawMessage) (status models.Status) {
	start := time.Now()
	log := zerolog.Ctx(ctx).With().Str("invocation_id", InvocationID(ctx)).Logger()
	ctx = log.WithContext(ctx)
	pipeline := PipelineUnknown

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("invocation panicked")
			status = models.Failed(fmt.Errorf("internal error: %v", r))
		}
		elapsed := time.Since(start)
		e.recorder.ObserveInvocation(pipeline, status.Status, elapsed)
		log.Info().
			Str("pipeline", pipeline).
			Str("status", status.Status).
			Str("reason", status.Reason).
			Dur("elapsed", elapsed).
			Msg("invocation finished")
	}()

	env, err := envelope.Parse(raw)
	if err != nil {
		log.Error().Err(err).Str("kind", string(models.KindOf(err))).Msg("unreadable envelope")
		return models.Failed(err)
	}

	switch env.Shape {
	case envelope.ShapeChange:
		pipeline = PipelineRemediate
		return e.Remediate(ctx, env.Change)
	case envelope.ShapeSnapshot:
		pipeline = PipelineEvaluate
		return e.Evaluate(ctx, env.Snapshot)
	default:
		return models.Failed(fmt.Errorf("unhandled envelope shape %q", env.Shape))
	}
}
