package entity

import "time"

const (
	RoleAdmin      = "admin"
	RoleAstrologer = "astrologer"
	RoleSupport    = "support"
	RoleClient     = "client"
)

type User struct {
	ID          string    `json:"id" firestore:"id"`
	DisplayName string    `json:"display_name" firestore:"displayName"`
	PhotoURL    string    `json:"photo_url,omitempty" firestore:"photoURL,omitempty"`
	Roles       []string  `json:"roles" firestore:"roles"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}

// Identity is the authenticated caller as handed over by the auth layer.
// The chat core never looks past uid and roles.
type Identity struct {
	UID   string
	Roles []string
}

func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
