package entity

import "time"

// Notification is written for a chat participant who was offline when a
// message arrived. Online participants get the message through their live
// subscription instead.
type Notification struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"userId"`
	ChatID    string    `json:"chat_id" firestore:"chatId"`
	Preview   string    `json:"preview" firestore:"preview"`
	Seen      bool      `json:"seen" firestore:"seen"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
