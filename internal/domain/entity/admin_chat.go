package entity

import "time"

const (
	AdminChatStatusActive   = "active"
	AdminChatStatusResolved = "resolved"
)

// AdminChat is the admin-to-client side channel. It is linked to a main
// thread by MainChatID, carries its own message log, and at most one
// active instance exists per main thread.
type AdminChat struct {
	ID          string       `json:"id" firestore:"id"`
	MainChatID  string       `json:"main_chat_id" firestore:"mainChatId"`
	ClientID    string       `json:"client_id" firestore:"clientId"`
	AdminID     string       `json:"admin_id" firestore:"adminId"`
	Status      string       `json:"status" firestore:"status"`
	LastMessage *LastMessage `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	CreatedAt   time.Time    `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time    `json:"updated_at" firestore:"updatedAt"`
}

func (a *AdminChat) IsResolved() bool {
	return a.Status == AdminChatStatusResolved
}
