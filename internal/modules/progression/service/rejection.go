package service

import (
	"fmt"

	"kolibri.dev/communityquest/internal/catalog"
)

// Reason identifies why a completion attempt was rejected.
type Reason string

const (
	ReasonTaskNotFound           Reason = "task_not_found"
	ReasonSpecialForbidden       Reason = "special_forbidden"
	ReasonAlreadyCompleted       Reason = "already_completed"
	ReasonOnboardingIncomplete   Reason = "onboarding_incomplete"
	ReasonLevelPrerequisiteUnmet Reason = "level_prerequisite_unmet"
	ReasonInvalidSpecialTask     Reason = "invalid_special_task"
)

// Rejection is an expected, structured outcome of a completion attempt — a
// rule said no. It is returned as an error value but is not an infrastructure
// failure; handlers unwrap it into a 4xx response and callers are expected to
// resubmit a corrected request.
type Rejection struct {
	Reason   Reason       `json:"reason"`
	Message  string       `json:"message"`
	Path     catalog.Path `json:"path,omitempty"`
	Required int          `json:"required,omitempty"`
	Level    int          `json:"level,omitempty"`
}

func (r *Rejection) Error() string {
	return r.Message
}

func rejectTaskNotFound(taskID string) *Rejection {
	return &Rejection{
		Reason:  ReasonTaskNotFound,
		Message: fmt.Sprintf("task %q not found", taskID),
	}
}

func rejectSpecialForbidden() *Rejection {
	return &Rejection{
		Reason:  ReasonSpecialForbidden,
		Message: "special tasks can only be awarded by moderators",
	}
}

func rejectAlreadyCompleted(taskID string) *Rejection {
	return &Rejection{
		Reason:  ReasonAlreadyCompleted,
		Message: fmt.Sprintf("task %q already completed", taskID),
	}
}

func rejectOnboardingIncomplete(required int) *Rejection {
	return &Rejection{
		Reason:   ReasonOnboardingIncomplete,
		Message:  fmt.Sprintf("complete at least %d onboarding tasks first", required),
		Path:     catalog.PathOnboarding,
		Required: required,
	}
}

func rejectLevelPrerequisiteUnmet(path catalog.Path, level, required int) *Rejection {
	return &Rejection{
		Reason:   ReasonLevelPrerequisiteUnmet,
		Message:  fmt.Sprintf("you need %d distinct completed level-%d tasks in the %s path first", required, level, path),
		Path:     path,
		Required: required,
		Level:    level,
	}
}

func rejectInvalidSpecialTask(taskID string) *Rejection {
	return &Rejection{
		Reason:  ReasonInvalidSpecialTask,
		Message: fmt.Sprintf("%q is not a special task id", taskID),
	}
}
