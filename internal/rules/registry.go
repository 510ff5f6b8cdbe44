package rules

import (
	"fmt"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// DefaultRuleRegistry is a simple, ordered, in-memory registry.
// Register panics on duplicate rule IDs to catch wiring mistakes at startup.
type DefaultRuleRegistry struct {
	rules []Rule
	index map[models.RuleID]Rule
}

// NewDefaultRuleRegistry returns an empty registry ready for rule registration.
func NewDefaultRuleRegistry() *DefaultRuleRegistry {
	return &DefaultRuleRegistry{
		index: make(map[models.RuleID]Rule),
	}
}

// NewStandardRegistry returns a registry holding the two built-in rules.
func NewStandardRegistry() *DefaultRuleRegistry {
	r := NewDefaultRuleRegistry()
	r.Register(S3PublicPolicyRule{})
	r.Register(SGUnrestrictedSSHRule{})
	return r
}

// Register adds rule to the registry. Panics if the same ID is registered twice.
func (r *DefaultRuleRegistry) Register(rule Rule) {
	if _, exists := r.index[rule.ID()]; exists {
		panic(fmt.Sprintf("duplicate rule ID: %q", rule.ID()))
	}
	r.rules = append(r.rules, rule)
	r.index[rule.ID()] = rule
}

// All returns all registered rules in registration order.
func (r *DefaultRuleRegistry) All() []Rule {
	return r.rules
}

// Lookup returns the rule registered under id.
func (r *DefaultRuleRegistry) Lookup(id models.RuleID) (Rule, bool) {
	rule, ok := r.index[id]
	return rule, ok
}
