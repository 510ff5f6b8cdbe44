package envelope

import (
	"bytes"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"

	"github.com/pankaj-dahiya-devops/guardrail/internal/models"
)

// ChangeEnvelope is an EventBridge notification for a CloudTrail-recorded
// API call.
type ChangeEnvelope struct {
	// Event holds the EventBridge envelope fields. Detail keeps the raw
	// CloudTrail record.
	Event events.CloudWatchEvent

	// EventName is detail.eventName, or "" when absent or not a string.
	EventName string

	// RequestParameters is detail.requestParameters, raw.
	RequestParameters json.RawMessage
}

// decodeChange never fails: missing or ill-typed fields are left empty and
// the classifier treats the envelope as unroutable.
func decodeChange(fields map[string]json.RawMessage) *ChangeEnvelope {
	ev := events.CloudWatchEvent{
		Version:    lenientString(fields["version"]),
		ID:         lenientString(fields["id"]),
		DetailType: lenientString(fields["detail-type"]),
		Source:     lenientString(fields["source"]),
		AccountID:  lenientString(fields["account"]),
		Region:     lenientString(fields["region"]),
		Detail:     fields["detail"],
	}
	env := &ChangeEnvelope{Event: ev}
	if detail := lenientObject(fields["detail"]); detail != nil {
		env.EventName = lenientString(detail["eventName"])
		env.RequestParameters = detail["requestParameters"]
	}
	return env
}

// S3PolicyChange is a decoded PutBucketPolicy request.
type S3PolicyChange struct {
	Bucket string
	// Policy is the submitted policy document as JSON text.
	Policy string
}

// DecodeS3PolicyChange extracts the bucket name and policy document from a
// PutBucketPolicy record. The policy may be recorded as an object or as a
// JSON-encoded string.
func DecodeS3PolicyChange(env *ChangeEnvelope) (S3PolicyChange, error) {
	const op = "decode PutBucketPolicy"
	params, err := requestParameters(op, env)
	if err != nil {
		return S3PolicyChange{}, err
	}

	bucket := lenientString(params["bucketName"])
	if bucket == "" {
		return S3PolicyChange{}, models.Malformed(op, "requestParameters.bucketName missing")
	}

	raw := bytes.TrimSpace(params["bucketPolicy"])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return S3PolicyChange{}, models.Malformed(op, "requestParameters.bucketPolicy missing for bucket %s", bucket)
	}
	policy := string(raw)
	if raw[0] == '"' {
		policy = lenientString(raw)
	}
	return S3PolicyChange{Bucket: bucket, Policy: policy}, nil
}

// SGIngressChange is a decoded AuthorizeSecurityGroupIngress request.
type SGIngressChange struct {
	GroupID   string
	GroupName string
	Rules     []models.IngressRule
}

type ipPermissionsParam struct {
	Items []ipPermissionItem `json:"items"`
}

type ipPermissionItem struct {
	IPProtocol string `json:"ipProtocol"`
	FromPort   *int32 `json:"fromPort"`
	ToPort     *int32 `json:"toPort"`
	IPRanges   struct {
		Items []struct {
			CidrIP string `json:"cidrIp"`
		} `json:"items"`
	} `json:"ipRanges"`
}

// DecodeSGIngressChange extracts the group id and the authorized ingress
// permissions. Only IPv4 ranges are carried: the SSH rule matches 0.0.0.0/0.
// A request without ipPermissions.items yields an empty rule list.
func DecodeSGIngressChange(env *ChangeEnvelope) (SGIngressChange, error) {
	const op = "decode AuthorizeSecurityGroupIngress"
	params, err := requestParameters(op, env)
	if err != nil {
		return SGIngressChange{}, err
	}

	change := SGIngressChange{
		GroupID:   lenientString(params["groupId"]),
		GroupName: lenientString(params["groupName"]),
	}
	if change.GroupID == "" {
		return SGIngressChange{}, models.Malformed(op, "requestParameters.groupId missing")
	}

	raw := bytes.TrimSpace(params["ipPermissions"])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return change, nil
	}
	var perms ipPermissionsParam
	if err := json.Unmarshal(raw, &perms); err != nil {
		return SGIngressChange{}, models.Malformed(op, "requestParameters.ipPermissions for %s: %v", change.GroupID, err)
	}
	for _, item := range perms.Items {
		rule := models.IngressRule{
			Protocol: item.IPProtocol,
			FromPort: item.FromPort,
			ToPort:   item.ToPort,
		}
		for _, r := range item.IPRanges.Items {
			rule.CIDRs = append(rule.CIDRs, r.CidrIP)
		}
		change.Rules = append(change.Rules, rule)
	}
	return change, nil
}

func requestParameters(op string, env *ChangeEnvelope) (map[string]json.RawMessage, error) {
	if env == nil {
		return nil, models.Malformed(op, "no envelope")
	}
	params := lenientObject(env.RequestParameters)
	if params == nil {
		return nil, models.Malformed(op, "detail.requestParameters missing or not an object")
	}
	return params, nil
}
