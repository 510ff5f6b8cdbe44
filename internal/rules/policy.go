package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// MatchMode selects how a bucket policy taken from a change event is judged.
type MatchMode string

const (
	// MatchStrict flags a statement only when it has a wildcard principal and
	// Effect "Allow". This is the same test the live-query evaluation applies.
	MatchStrict MatchMode = "strict"

	// MatchPrincipal flags any statement with a wildcard principal, whatever
	// its Effect. It reproduces the historical behaviour of the reactive path.
	MatchPrincipal MatchMode = "principal"
)

// ParseMatchMode validates s. An empty string selects MatchStrict.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchStrict:
		return MatchStrict, nil
	case MatchPrincipal:
		return MatchPrincipal, nil
	default:
		return "", fmt.Errorf("unknown policy match mode %q (want %q or %q)", s, MatchStrict, MatchPrincipal)
	}
}

// PolicyDocument is an S3 bucket policy. Only the fields the detectors read
// are decoded; everything else is ignored.
type PolicyDocument struct {
	Version   string     `json:"Version,omitempty"`
	Statement Statements `json:"Statement"`
}

// Statements accepts both a single statement object and an array of them,
// as IAM policy grammar allows.
type Statements []Statement

func (s *Statements) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var one Statement
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = Statements{one}
		return nil
	}
	var many []Statement
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// Statement is one policy statement.
type Statement struct {
	Sid       string    `json:"Sid,omitempty"`
	Effect    string    `json:"Effect"`
	Principal Principal `json:"Principal"`
}

// Allows reports whether the statement grants access.
func (s Statement) Allows() bool {
	return s.Effect == "Allow"
}

// Principal is the Principal element of a statement. It is either the bare
// string "*" or an object keyed by principal type ("AWS", "Service", ...),
// each holding a string or an array of strings.
type Principal struct {
	// Anyone is set for the bare "*" form.
	Anyone bool
	// AWS holds the values of the "AWS" key.
	AWS []string
}

func (p *Principal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Principal{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Principal{Anyone: s == "*"}
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("principal: %w", err)
	}
	aws, err := stringOrList(obj["AWS"])
	if err != nil {
		return fmt.Errorf("principal AWS: %w", err)
	}
	*p = Principal{AWS: aws}
	return nil
}

// IsWildcard reports whether the principal is everyone: "*",
// {"AWS": "*"} or an AWS list containing "*".
func (p Principal) IsWildcard() bool {
	if p.Anyone {
		return true
	}
	for _, v := range p.AWS {
		if v == "*" {
			return true
		}
	}
	return false
}

func stringOrList(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ParsePolicy decodes a bucket policy. The input may be the policy object
// itself or a JSON string containing it (CloudTrail records use the former,
// GetBucketPolicy the latter once unwrapped).
func ParsePolicy(data []byte) (*PolicyDocument, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty policy document")
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, fmt.Errorf("decode policy string: %w", err)
		}
		data = []byte(inner)
	}
	var doc PolicyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode policy document: %w", err)
	}
	return &doc, nil
}

// PublicStatement returns the index of the first statement that exposes the
// bucket under mode, or -1.
func (d *PolicyDocument) PublicStatement(mode MatchMode) int {
	if d == nil {
		return -1
	}
	for i, st := range d.Statement {
		if !st.Principal.IsWildcard() {
			continue
		}
		if mode == MatchPrincipal || st.Allows() {
			return i
		}
	}
	return -1
}

// wildcardMarkers are the whitespace-free fragments the substring heuristic
// looks for.
var wildcardMarkers = []string{
	`"Principal":"*"`,
	`"Principal":{"AWS":"*"}`,
}

// containsWildcardPrincipal is the substring heuristic applied to policy
// text that could not be parsed.
func containsWildcardPrincipal(text string) bool {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	for _, m := range wildcardMarkers {
		if strings.Contains(compact, m) {
			return true
		}
	}
	return false
}
