package guard

import (
	"fmt"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/auth"
)

// ApplicationStatus mirrors the application_status enum.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusReviewed  ApplicationStatus = "reviewed"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// reviewTransitions lists what a company may move an application to.
// Staying in the same status is handled separately.
var reviewTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:  {StatusReviewed, StatusAccepted, StatusRejected},
	StatusReviewed: {StatusAccepted, StatusRejected},
}

// CanTransition validates a status change made by actor.
//
// Companies drive review: pending -> reviewed|accepted|rejected and
// reviewed -> accepted|rejected. Resubmitting the current status is allowed so a
// reply can be attached, except on withdrawn applications. Talents may only
// withdraw, from any status other than withdrawn.
func CanTransition(from, to ApplicationStatus, actor auth.Role) error {
	if !from.Valid() || !to.Valid() {
		return apperror.NewValidationError(fmt.Sprintf("unknown application status %q", to), nil)
	}
	switch actor {
	case auth.RoleTalent:
		if to != StatusWithdrawn {
			return apperror.NewUnauthorizedError("talents can only withdraw applications", nil)
		}
		if from == StatusWithdrawn {
			return apperror.NewValidationError("application is already withdrawn", nil)
		}
		return nil
	case auth.RoleCompany:
		if from == StatusWithdrawn {
			return apperror.NewValidationError("application was withdrawn by the talent", nil)
		}
		if to == StatusWithdrawn {
			return apperror.NewUnauthorizedError("only the talent can withdraw an application", nil)
		}
		if from == to {
			return nil
		}
		for _, allowed := range reviewTransitions[from] {
			if allowed == to {
				return nil
			}
		}
		return apperror.NewValidationError(fmt.Sprintf("cannot change application status from %s to %s", from, to), nil)
	default:
		return apperror.NewUnauthorizedError("unknown account type", nil)
	}
}
