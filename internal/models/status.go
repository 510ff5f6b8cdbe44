package models

// Terminal status values returned to the invoking transport.
const (
	StatusSuccess  = "success"
	StatusIgnored  = "ignored"
	StatusError    = "error"
	StatusReported = "reported"
)

// Status is the terminal record every invocation produces, whatever happened.
// Only the fields relevant to the outcome are populated.
type Status struct {
	Status        string         `json:"status"`
	Reason        string         `json:"reason,omitempty"`
	Bucket        string         `json:"bucket,omitempty"`
	SecurityGroup string         `json:"security_group,omitempty"`
	Rule          RuleID         `json:"rule,omitempty"`
	ResourceID    string         `json:"resource_id,omitempty"`
	Compliance    ComplianceType `json:"compliance,omitempty"`
	Annotation    string         `json:"annotation,omitempty"`
}

// Ignored builds an ignored status with the given reason.
func Ignored(reason string) Status {
	return Status{Status: StatusIgnored, Reason: reason}
}

// Failed builds an error status from err.
func Failed(err error) Status {
	return Status{Status: StatusError, Reason: err.Error()}
}
