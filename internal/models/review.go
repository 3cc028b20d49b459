package models

import "strings"

// ReviewResponse is the shape returned by the external review workflow.
// Only data.outputs.status == "APPROVE" (case-insensitive) counts as
// approval; any other shape, including a transport error, does not.
type ReviewResponse struct {
	Error string           `json:"error,omitempty"`
	Data  *ReviewOutputSet `json:"data,omitempty"`
}

// ReviewOutputSet is the nested payload carrying workflow outputs.
type ReviewOutputSet struct {
	Outputs map[string]interface{} `json:"outputs,omitempty"`
}

// IsApproved reports whether the response represents an explicit approval.
func (r *ReviewResponse) IsApproved() bool {
	if r == nil || r.Error != "" || r.Data == nil || r.Data.Outputs == nil {
		return false
	}
	status, ok := r.Data.Outputs["status"].(string)
	if !ok {
		return false
	}
	return strings.EqualFold(status, "APPROVE")
}

// ReviewStats tallies one review run.
type ReviewStats struct {
	Processed int `json:"processed"`
	Approved  int `json:"approved"`
	Failed    int `json:"failed"`
}
