package services

import "eventhub-api/models"

type Action string

const (
	ActionJoinEvent        Action = "event:join"
	ActionConfirmPayment   Action = "payment:confirm"
	ActionLeaveEvent       Action = "event:leave"
	ActionViewParticipants Action = "event:participants"
	ActionCreateEvent      Action = "event:create"
	ActionManageEvent      Action = "event:manage"
	ActionWriteReview      Action = "review:write"
	ActionModerateReview   Action = "review:moderate"
	ActionCheckIn          Action = "ticket:checkin"
)

var capabilities = map[models.Role]map[Action]bool{
	models.RoleUser: {
		ActionJoinEvent:      true,
		ActionConfirmPayment: true,
		ActionLeaveEvent:     true,
		ActionWriteReview:    true,
	},
	models.RoleHost: {
		ActionJoinEvent:        true,
		ActionConfirmPayment:   true,
		ActionLeaveEvent:       true,
		ActionWriteReview:      true,
		ActionViewParticipants: true,
		ActionCreateEvent:      true,
		ActionManageEvent:      true,
		ActionCheckIn:          true,
	},
	models.RoleAdmin: {
		ActionJoinEvent:        true,
		ActionConfirmPayment:   true,
		ActionLeaveEvent:       true,
		ActionWriteReview:      true,
		ActionViewParticipants: true,
		ActionCreateEvent:      true,
		ActionManageEvent:      true,
		ActionCheckIn:          true,
		ActionModerateReview:   true,
	},
}

// Can reports whether the role grants the action.
func Can(role models.Role, action Action) bool {
	return capabilities[role][action]
}

// Authorize rejects callers whose role does not grant the action.
// Ownership checks are made by the operations themselves.
func Authorize(caller models.Caller, action Action) error {
	if caller.UserID == "" {
		return Unauthorized("authentication required")
	}
	if !Can(caller.Role, action) {
		return Forbidden("insufficient permissions")
	}
	return nil
}
