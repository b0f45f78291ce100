package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAccessRequestApproved  = "access_request.approved"
	EventTypeAccessRequestRejected  = "access_request.rejected"
	EventTypeInternshipTransitioned = "internship.transitioned"
	EventTypeMentorAssigned         = "mentor.assigned"
)

type AccessRequestApprovedEvent struct {
	BaseEvent
	AccessRequestID int64  `json:"access_request_id"`
	CreatedUserID   int64  `json:"created_user_id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	// TempPassword is handed to the welcome mail only; it is never part of
	// the serialized payload.
	TempPassword string `json:"-"`
}

func NewAccessRequestApprovedEvent(accessRequestID, createdUserID int64, email, name, role string, tempPassword string) *AccessRequestApprovedEvent {
	return &AccessRequestApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccessRequestApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"access_request_id": accessRequestID,
				"created_user_id":   createdUserID,
				"email":             email,
				"name":              name,
				"role":              role,
			},
		},
		AccessRequestID: accessRequestID,
		CreatedUserID:   createdUserID,
		Email:           email,
		Name:            name,
		Role:            role,
		TempPassword:    tempPassword,
	}
}

type AccessRequestRejectedEvent struct {
	BaseEvent
	AccessRequestID int64  `json:"access_request_id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Comment         string `json:"comment"`
}

func NewAccessRequestRejectedEvent(accessRequestID int64, email, name, comment string) *AccessRequestRejectedEvent {
	return &AccessRequestRejectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccessRequestRejected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"access_request_id": accessRequestID,
				"email":             email,
				"name":              name,
				"comment":           comment,
			},
		},
		AccessRequestID: accessRequestID,
		Email:           email,
		Name:            name,
		Comment:         comment,
	}
}

type InternshipTransitionedEvent struct {
	BaseEvent
	RequestID    int64  `json:"request_id"`
	FromStatus   string `json:"from_status"`
	ToStatus     string `json:"to_status"`
	ActorID      int64  `json:"actor_id"`
	ActorRole    string `json:"actor_role"`
	TraineeEmail string `json:"trainee_email"`
}

func NewInternshipTransitionedEvent(requestID int64, fromStatus, toStatus string, actorID int64, actorRole, traineeEmail string) *InternshipTransitionedEvent {
	return &InternshipTransitionedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeInternshipTransitioned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":    requestID,
				"from_status":   fromStatus,
				"to_status":     toStatus,
				"actor_id":      actorID,
				"actor_role":    actorRole,
				"trainee_email": traineeEmail,
			},
		},
		RequestID:    requestID,
		FromStatus:   fromStatus,
		ToStatus:     toStatus,
		ActorID:      actorID,
		ActorRole:    actorRole,
		TraineeEmail: traineeEmail,
	}
}

type MentorAssignedEvent struct {
	BaseEvent
	RequestID   int64  `json:"request_id"`
	MentorID    int64  `json:"mentor_id"`
	MentorEmail string `json:"mentor_email"`
	AssignedBy  int64  `json:"assigned_by"`
	TraineeName string `json:"trainee_name"`
}

func NewMentorAssignedEvent(requestID, mentorID int64, mentorEmail string, assignedBy int64, traineeName string) *MentorAssignedEvent {
	return &MentorAssignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeMentorAssigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":   requestID,
				"mentor_id":    mentorID,
				"mentor_email": mentorEmail,
				"assigned_by":  assignedBy,
				"trainee_name": traineeName,
			},
		},
		RequestID:   requestID,
		MentorID:    mentorID,
		MentorEmail: mentorEmail,
		AssignedBy:  assignedBy,
		TraineeName: traineeName,
	}
}
