package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pankaj-dahiya-devops/guardrail/internal/config"
	"github.com/pankaj-dahiya-devops/guardrail/internal/engine"
	"github.com/pankaj-dahiya-devops/guardrail/internal/envelope"
	"github.com/pankaj-dahiya-devops/guardrail/internal/metrics"
	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
	"github.com/pankaj-dahiya-devops/guardrail/internal/version"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeEngine struct {
	bodies []string
	status models.Status
	hadLog bool
}

func (f *fakeEngine) Handle(ctx context.Context, raw json.RawMessage) models.Status {
	f.bodies = append(f.bodies, string(raw))
	f.hadLog = zerolog.Ctx(ctx).GetLevel() != zerolog.Disabled
	return f.status
}

func (f *fakeEngine) Remediate(context.Context, *envelope.ChangeEnvelope) models.Status {
	return f.status
}

func (f *fakeEngine) Evaluate(context.Context, *envelope.SnapshotEnvelope) models.Status {
	return f.status
}

func fakeDeps(eng *fakeEngine, stdin string) cliDeps {
	return cliDeps{
		provider: goodMockAWS(),
		newEngine: func(context.Context, *config.Config, *metrics.Recorder) (engine.Engine, error) {
			return eng, nil
		},
		stdin: strings.NewReader(stdin),
	}
}

// execute runs the command tree with args against a config path that does
// not exist, so defaults apply.
func execute(t *testing.T, deps cliDeps, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmdWith(deps)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

// ── replay ───────────────────────────────────────────────────────────────────

func TestReplay_FromFile(t *testing.T) {
	eng := &fakeEngine{status: models.Status{Status: models.StatusSuccess, Bucket: "b"}}
	path := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(path, []byte(`{"source":"aws.s3"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, fakeDeps(eng, ""), "replay", "--event", path)
	if err != nil {
		t.Fatalf("replay returned error: %v", err)
	}
	if len(eng.bodies) != 1 || eng.bodies[0] != `{"source":"aws.s3"}` {
		t.Errorf("engine bodies: got %v", eng.bodies)
	}
	var got models.Status
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("stdout is not a status document: %v\n%s", err, stdout)
	}
	if got != eng.status {
		t.Errorf("status: got %+v; want %+v", got, eng.status)
	}
	if !strings.Contains(stdout, "\n  \"status\"") {
		t.Errorf("stdout not indented:\n%s", stdout)
	}
}

func TestReplay_FromStdin(t *testing.T) {
	eng := &fakeEngine{status: models.Ignored("Unsupported event")}
	_, _, err := execute(t, fakeDeps(eng, `{"detail":{}}`), "replay")
	if err != nil {
		t.Fatalf("replay returned error: %v", err)
	}
	if len(eng.bodies) != 1 || eng.bodies[0] != `{"detail":{}}` {
		t.Errorf("engine bodies: got %v", eng.bodies)
	}
	if !eng.hadLog {
		t.Error("engine context carried no logger")
	}
}

func TestReplay_ErrorStatusFailsCommand(t *testing.T) {
	eng := &fakeEngine{status: models.Status{Status: models.StatusError, Reason: "boom"}}
	stdout, _, err := execute(t, fakeDeps(eng, `{}`), "replay")
	if !errors.Is(err, errStatusError) {
		t.Errorf("err: got %v; want errStatusError", err)
	}
	if !strings.Contains(stdout, "boom") {
		t.Errorf("status not printed before failing:\n%s", stdout)
	}
}

func TestReplay_TableOutput(t *testing.T) {
	eng := &fakeEngine{status: models.Status{Status: models.StatusSuccess, SecurityGroup: "sg-1"}}
	stdout, _, err := execute(t, fakeDeps(eng, `{}`), "replay", "--output", "table")
	if err != nil {
		t.Fatalf("replay returned error: %v", err)
	}
	if !strings.Contains(stdout, "SECURITY GROUP") || !strings.Contains(stdout, "sg-1") {
		t.Errorf("table output missing security group row:\n%s", stdout)
	}
}

func TestReplay_UnknownOutputFormat(t *testing.T) {
	eng := &fakeEngine{}
	_, _, err := execute(t, fakeDeps(eng, `{}`), "replay", "-o", "yaml")
	if err == nil {
		t.Fatal("want error for unknown output format")
	}
	if len(eng.bodies) != 0 {
		t.Error("engine called despite invalid flags")
	}
}

func TestReplay_MissingFile(t *testing.T) {
	eng := &fakeEngine{}
	_, _, err := execute(t, fakeDeps(eng, ""), "replay", "--event", filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("want error for missing event file")
	}
	if len(eng.bodies) != 0 {
		t.Error("engine called without an event")
	}
}

func TestReplay_EngineInitFailure(t *testing.T) {
	deps := fakeDeps(&fakeEngine{}, `{}`)
	deps.newEngine = func(context.Context, *config.Config, *metrics.Recorder) (engine.Engine, error) {
		return nil, errors.New("no credentials")
	}
	_, _, err := execute(t, deps, "replay")
	if err == nil || !strings.Contains(err.Error(), "no credentials") {
		t.Errorf("err: got %v; want engine init failure", err)
	}
}

// ── lambda ───────────────────────────────────────────────────────────────────

func TestLambdaHandler_NeverReturnsError(t *testing.T) {
	eng := &fakeEngine{status: models.Status{Status: models.StatusError, Reason: "x"}}
	rt := &runtime{logger: zerolog.New(zerolog.NewTestWriter(t)), engine: eng}

	status, err := lambdaHandler(rt)(context.Background(), json.RawMessage(`{}`))
	if err != nil {
		t.Errorf("handler error: got %v; want nil", err)
	}
	if status != eng.status {
		t.Errorf("status: got %+v; want %+v", status, eng.status)
	}
	if !eng.hadLog {
		t.Error("engine context carried no logger")
	}
}

// ── version ──────────────────────────────────────────────────────────────────

func TestVersionCmd_Output(t *testing.T) {
	orig, origC, origD := version.Version, version.Commit, version.Date
	t.Cleanup(func() {
		version.Version, version.Commit, version.Date = orig, origC, origD
	})
	version.Version = "test"
	version.Commit = "abc123"
	version.Date = "2025-01-01"

	stdout, _, err := execute(t, fakeDeps(&fakeEngine{}, ""), "version")
	if err != nil {
		t.Fatalf("version command returned error: %v", err)
	}
	for _, want := range []string{"guardrail version test", "abc123", "2025-01-01"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("version output missing %q; got:\n%s", want, stdout)
		}
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmdWith(fakeDeps(&fakeEngine{}, ""))
	want := map[string]bool{"lambda": false, "serve": false, "replay": false, "doctor": false, "version": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}
