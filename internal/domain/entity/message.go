package entity

import "time"

const (
	MessageTypeText   = "text"
	MessageTypeFile   = "file"
	MessageTypeVoice  = "voice"
	MessageTypeSystem = "system"
)

const previewLimit = 50

type MessageFileRef struct {
	ID   string `json:"id" firestore:"id"`
	Name string `json:"name" firestore:"name"`
	URL  string `json:"url" firestore:"url"`
	Type string `json:"type" firestore:"type"`
}

type VoicePayload struct {
	URL             string `json:"url" firestore:"url"`
	DurationSeconds int    `json:"duration_seconds" firestore:"durationSeconds"`
	FileName        string `json:"file_name" firestore:"fileName"`
}

// ChatMessage is one entry in a thread's append-only log. Everything but
// Read is immutable once written; CreatedAt is assigned by the store.
type ChatMessage struct {
	ID       string           `json:"id" firestore:"id"`
	ChatID   string           `json:"chat_id" firestore:"chatId"`
	SenderID string           `json:"sender_id" firestore:"senderId"`
	Type     string           `json:"type" firestore:"type"`
	Text     string           `json:"text,omitempty" firestore:"text,omitempty"`
	Files    []MessageFileRef `json:"files,omitempty" firestore:"files,omitempty"`
	Voice    *VoicePayload    `json:"voice,omitempty" firestore:"voice,omitempty"`
	Read     bool             `json:"read" firestore:"read"`

	// Relay attribution. SenderID carries the displayed identity; when a
	// support agent wrote the message, ActualSenderID carries the author.
	ActualSenderID   string `json:"actual_sender_id,omitempty" firestore:"actualSenderId,omitempty"`
	SentBySupport    bool   `json:"sent_by_support,omitempty" firestore:"sentBySupport,omitempty"`
	SentToAstrologer bool   `json:"sent_to_astrologer,omitempty" firestore:"sentToAstrologer,omitempty"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}

// SummarySenderID is the sender recorded on the thread's lastMessage
// snapshot. For relayed messages this is always the agent who actually
// typed, regardless of how the message itself is attributed.
func (m *ChatMessage) SummarySenderID() string {
	if m.SentBySupport && m.ActualSenderID != "" {
		return m.ActualSenderID
	}
	return m.SenderID
}

// PreviewText truncates text for the roster's lastMessage snapshot.
func PreviewText(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLimit {
		return s
	}
	return string(runes[:previewLimit]) + "..."
}

// Preview is the roster snapshot text for this message.
func (m *ChatMessage) Preview() string {
	switch m.Type {
	case MessageTypeFile:
		if len(m.Files) > 0 {
			return m.Files[0].Name
		}
		return "File"
	case MessageTypeVoice:
		return "Voice message"
	default:
		return PreviewText(m.Text)
	}
}
