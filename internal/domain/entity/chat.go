package entity

import "time"

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	// StatusExpired is only ever derived from the expiry timestamp; it is
	// never written to the store.
	StatusExpired = "expired"

	ServiceMarriageMatching = "marriage-matching"
	ServicePrediction       = "prediction"
	ServiceWriting          = "writing"

	SystemSenderID = "system"
)

type LastMessage struct {
	Text      string    `json:"text" firestore:"text"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	SenderID  string    `json:"sender_id" firestore:"senderId"`
}

type AssignmentRecord struct {
	AssigneeID string    `json:"assignee_id" firestore:"assigneeId"`
	AssignedBy string    `json:"assigned_by" firestore:"assignedBy"`
	AssignedAt time.Time `json:"assigned_at" firestore:"assignedAt"`
}

type ExtensionRecord struct {
	PreviousExpiry time.Time `json:"previous_expiry" firestore:"previousExpiry"`
	NewExpiry      time.Time `json:"new_expiry" firestore:"newExpiry"`
	Hours          int       `json:"hours" firestore:"hours"`
	ExtendedBy     string    `json:"extended_by" firestore:"extendedBy"`
	ExtendedAt     time.Time `json:"extended_at" firestore:"extendedAt"`
}

type ChatFeedback struct {
	Rating              int       `json:"rating" firestore:"rating"`
	Comment             string    `json:"comment,omitempty" firestore:"comment,omitempty"`
	SubmittedAt         time.Time `json:"submitted_at" firestore:"submittedAt"`
	VisibleToAstrologer bool      `json:"visible_to_astrologer" firestore:"visibleToAstrologer"`
}

type ChatThread struct {
	ID                       string             `json:"id" firestore:"id"`
	Participants             []string           `json:"participants" firestore:"participants"`
	ClientID                 string             `json:"client_id" firestore:"clientId"`
	AstrologerID             string             `json:"astrologer_id,omitempty" firestore:"astrologerId,omitempty"`
	SupportUserID            string             `json:"support_user_id,omitempty" firestore:"supportUserId,omitempty"`
	AdminID                  string             `json:"admin_id,omitempty" firestore:"adminId,omitempty"`
	ServiceType              string             `json:"service_type" firestore:"serviceType"`
	Status                   string             `json:"status" firestore:"status"`
	PlanDurationHours        int64              `json:"plan_duration_hours,omitempty" firestore:"planDurationHours,omitempty"`
	// ExpiryTimestamp is read and written by the store layer, which
	// normalizes legacy documents that held raw milliseconds.
	ExpiryTimestamp          time.Time          `json:"expiry_timestamp,omitempty" firestore:"-"`
	ParticipantNames         map[string]string  `json:"participant_names,omitempty" firestore:"participantNames,omitempty"`
	ParticipantAvatars       map[string]string  `json:"participant_avatars,omitempty" firestore:"participantAvatars,omitempty"`
	LastMessage              *LastMessage       `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	AssignmentHistory        []AssignmentRecord `json:"assignment_history,omitempty" firestore:"assignmentHistory,omitempty"`
	SupportAssignmentHistory []AssignmentRecord `json:"support_assignment_history,omitempty" firestore:"supportAssignmentHistory,omitempty"`
	AdminAssignmentHistory   []AssignmentRecord `json:"admin_assignment_history,omitempty" firestore:"adminAssignmentHistory,omitempty"`
	ExtensionHistory         []ExtensionRecord  `json:"extension_history,omitempty" firestore:"extensionHistory,omitempty"`
	Feedback                 *ChatFeedback      `json:"feedback,omitempty" firestore:"feedback,omitempty"`
	ServiceRequestID         string             `json:"service_request_id,omitempty" firestore:"serviceRequestId,omitempty"`
	PaymentID                string             `json:"payment_id,omitempty" firestore:"paymentId,omitempty"`
	CreatedAt                time.Time          `json:"created_at" firestore:"createdAt"`
	UpdatedAt                time.Time          `json:"updated_at" firestore:"updatedAt"`
}

func (c *ChatThread) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the primary counterpart of userID in this
// thread: the astrologer for the client and vice versa. Empty when the
// counterpart is not assigned yet.
func (c *ChatThread) OtherParticipant(userID string) string {
	if userID == c.ClientID {
		return c.AstrologerID
	}
	return c.ClientID
}

// DefaultPlanDurationHours applies to threads whose document carries no
// plan duration.
const DefaultPlanDurationHours = 24

// EffectiveExpiry is the explicit expiry timestamp when set, otherwise
// createdAt plus the plan duration.
func (c *ChatThread) EffectiveExpiry() time.Time {
	if !c.ExpiryTimestamp.IsZero() {
		return c.ExpiryTimestamp
	}
	hours := c.PlanDurationHours
	if hours <= 0 {
		hours = DefaultPlanDurationHours
	}
	return c.CreatedAt.Add(time.Duration(hours) * time.Hour)
}

func (c *ChatThread) IsExpired(now time.Time) bool {
	return now.After(c.EffectiveExpiry())
}

// EffectiveStatus is the single source of truth for the thread state.
// Completion is stored and terminal; expiry is always recomputed from the
// clock and never persisted.
func (c *ChatThread) EffectiveStatus(now time.Time) string {
	if c.Status == StatusCompleted {
		return StatusCompleted
	}
	if c.IsExpired(now) {
		return StatusExpired
	}
	return StatusActive
}
