package dto

import (
	"kolibri.dev/communityquest/internal/catalog"
)

type CompleteTaskRequest struct {
	TaskID  string `json:"task_id" binding:"required,max=16"`
	Comment string `json:"comment" binding:"max=500"`
}

// AwardRequest grants a special task to another member. Moderator-only; the
// acting moderator comes from the session, not the body.
type AwardRequest struct {
	MemberID   string `json:"member_id" binding:"required,max=32"`
	MemberName string `json:"member_name" binding:"max=100"`
	TaskID     string `json:"task_id" binding:"required,max=16"`
	Comment    string `json:"comment" binding:"max=500"`
}

type CompletionResponse struct {
	Success  bool         `json:"success"`
	XPEarned int          `json:"xp_earned"`
	TotalXP  int          `json:"total_xp"`
	Tier     int          `json:"tier"`
	TierName string       `json:"tier_name"`
	Task     catalog.Task `json:"task"`
}

// RejectionResponse mirrors service.Rejection for the wire.
type RejectionResponse struct {
	Success  bool   `json:"success"`
	Reason   string `json:"reason"`
	Error    string `json:"error"`
	Path     string `json:"path,omitempty"`
	Required int    `json:"required,omitempty"`
	Level    int    `json:"level,omitempty"`
}
