// Package envelope decodes the messages delivered by the upstream event
// transport into strongly typed requests.
//
// Two shapes arrive on the same entry point: EventBridge change
// notifications carrying a CloudTrail record (decoded into
// events.CloudWatchEvent) and AWS Config rule invocations (decoded into
// events.ConfigEvent). Optional fields are read leniently at this boundary;
// the absence of a field a pipeline requires is reported as a
// models.KindMalformed error instead of propagating a default downstream.
package envelope

import (
	"bytes"
	"encoding/json"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// Shape discriminates the two envelope forms.
type Shape string

const (
	ShapeChange   Shape = "change"
	ShapeSnapshot Shape = "snapshot"
)

// Envelope is a parsed inbound message. Exactly one of Change and Snapshot
// is set, according to Shape.
type Envelope struct {
	Shape    Shape
	Change   *ChangeEnvelope
	Snapshot *SnapshotEnvelope
}

// Parse discriminates raw by shape and decodes it. A body carrying
// invokingEvent or resultToken is a snapshot; a body carrying source or
// detail is a change notification. Anything else is malformed.
func Parse(raw []byte) (Envelope, error) {
	raw = bytes.TrimSpace(raw)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Envelope{}, models.Malformed("parse envelope", "body is not a JSON object")
	}

	switch {
	case has(fields, "invokingEvent") || has(fields, "resultToken"):
		snap, err := decodeSnapshot(raw)
		if err != nil {
			return Envelope{}, err
		}
		return Envelope{Shape: ShapeSnapshot, Snapshot: snap}, nil
	case has(fields, "source") || has(fields, "detail"):
		return Envelope{Shape: ShapeChange, Change: decodeChange(fields)}, nil
	default:
		return Envelope{}, models.Malformed("parse envelope", "neither a change notification nor a configuration snapshot")
	}
}

func has(fields map[string]json.RawMessage, key string) bool {
	_, ok := fields[key]
	return ok
}

// lenientString returns raw as a string, or "" when it is absent or not a
// JSON string.
func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// lenientObject returns raw as a field map, or nil when it is absent or not
// a JSON object.
func lenientObject(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
