package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

func TestStandardRegistry(t *testing.T) {
	r := NewStandardRegistry()
	all := r.All()
	if len(all) != 2 {
		t.Fatalf("rules: got %d; want 2", len(all))
	}
	if all[0].ID() != models.RuleS3PublicPolicy || all[1].ID() != models.RuleSGUnrestrictedSSH {
		t.Errorf("order: got %s, %s", all[0].ID(), all[1].ID())
	}
	if _, ok := r.Lookup("SG_UNRESTRICTED_SSH"); !ok {
		t.Error("lookup SG_UNRESTRICTED_SSH failed")
	}
	if _, ok := r.Lookup("sg_unrestricted_ssh"); ok {
		t.Error("lookup must be case-sensitive")
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("want panic on duplicate registration")
		}
	}()
	r := NewDefaultRuleRegistry()
	r.Register(S3PublicPolicyRule{})
	r.Register(S3PublicPolicyRule{})
}

// ── ParseMatchMode / ParsePolicy ─────────────────────────────────────────────

func TestParseMatchMode(t *testing.T) {
	for in, want := range map[string]MatchMode{"": MatchStrict, "strict": MatchStrict, " Principal ": MatchPrincipal} {
		got, err := ParseMatchMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMatchMode(%q): got %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMatchMode("loose"); err == nil {
		t.Error("want error for unknown mode")
	}
}

func TestParsePolicy_SingleStatementObject(t *testing.T) {
	doc, err := ParsePolicy([]byte(`{"Statement":{"Sid":"one","Effect":"Allow","Principal":"*"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Statement) != 1 || doc.Statement[0].Sid != "one" {
		t.Errorf("statements: got %+v", doc.Statement)
	}
	if !doc.Statement[0].Principal.IsWildcard() {
		t.Error("want wildcard principal")
	}
}

func TestParsePolicy_ServicePrincipalNotWildcard(t *testing.T) {
	doc, err := ParsePolicy([]byte(`{"Statement":[{"Effect":"Allow","Principal":{"Service":"cloudtrail.amazonaws.com"}}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.PublicStatement(MatchPrincipal) != -1 {
		t.Error("service principal must not count as public")
	}
}

func TestParsePolicy_Errors(t *testing.T) {
	for _, in := range []string{"", "   ", `"not json inside"`, `{"Statement":5}`} {
		if _, err := ParsePolicy([]byte(in)); err == nil {
			t.Errorf("ParsePolicy(%q): want error", in)
		}
	}
}
