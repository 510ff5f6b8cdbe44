package envelope

import (
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// ScenarioParameter is the rule-parameter key selecting the rule to evaluate.
const ScenarioParameter = "scenario"

// SnapshotEnvelope is a decoded AWS Config custom-rule invocation.
type SnapshotEnvelope struct {
	Event events.ConfigEvent

	// Item is the configuration item from invokingEvent.
	Item models.ConfigurationItem

	// MessageType is invokingEvent.messageType.
	MessageType string

	// Scenario is ruleParameters.scenario, or "" when ruleParameters is
	// absent, unparseable, or lacks a string scenario.
	Scenario string
}

type invokingEvent struct {
	MessageType              string             `json:"messageType"`
	NotificationCreationTime string             `json:"notificationCreationTime"`
	ConfigurationItem        *configurationItem `json:"configurationItem"`
}

type configurationItem struct {
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`
	ResourceName string `json:"resourceName"`
	CaptureTime  string `json:"configurationItemCaptureTime"`
	Status       string `json:"configurationItemStatus"`
}

func decodeSnapshot(raw []byte) (*SnapshotEnvelope, error) {
	const op = "decode configuration snapshot"

	var ev events.ConfigEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, models.Malformed(op, "%v", err)
	}
	if ev.ResultToken == "" {
		return nil, models.Malformed(op, "resultToken missing")
	}
	if ev.InvokingEvent == "" {
		return nil, models.Malformed(op, "invokingEvent missing")
	}

	var inv invokingEvent
	if err := json.Unmarshal([]byte(ev.InvokingEvent), &inv); err != nil {
		return nil, models.Malformed(op, "invokingEvent is not valid JSON: %v", err)
	}
	if inv.ConfigurationItem == nil {
		return nil, models.Malformed(op, "invokingEvent has no configurationItem (messageType %q)", inv.MessageType)
	}

	ci := inv.ConfigurationItem
	item := models.ConfigurationItem{
		ResourceType: ci.ResourceType,
		ResourceID:   ci.ResourceID,
		ResourceName: ci.ResourceName,
		Status:       ci.Status,
	}
	if item.ResourceType == "" {
		return nil, models.Malformed(op, "configurationItem.resourceType missing")
	}
	if item.ComplianceResourceID() == "" {
		return nil, models.Malformed(op, "configurationItem has no resource identity for %s", item.ResourceType)
	}

	captured, ok := parseTimestamp(ci.CaptureTime)
	if !ok {
		captured, ok = parseTimestamp(inv.NotificationCreationTime)
	}
	if !ok {
		return nil, models.Malformed(op, "configurationItem.configurationItemCaptureTime missing")
	}
	item.CaptureTime = captured

	return &SnapshotEnvelope{
		Event:       ev,
		Item:        item,
		MessageType: inv.MessageType,
		Scenario:    scenarioOf(ev.RuleParameters),
	}, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// scenarioOf reads the scenario selector from the JSON-encoded rule
// parameters. Parse failures are not errors here: the caller reports a
// missing scenario as NOT_APPLICABLE.
func scenarioOf(ruleParameters string) string {
	if ruleParameters == "" {
		return ""
	}
	var params map[string]json.RawMessage
	if err := json.Unmarshal([]byte(ruleParameters), &params); err != nil {
		return ""
	}
	return lenientString(params[ScenarioParameter])
}
