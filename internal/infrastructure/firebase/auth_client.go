package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"valluvarvaasal/internal/domain/entity"
)

// AuthClient wraps Firebase token verification and turns custom claims
// into the opaque identity the chat core consumes.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

func (a *AuthClient) VerifyToken(ctx context.Context, idToken string) (entity.Identity, error) {
	token, err := a.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return entity.Identity{}, err
	}

	return entity.Identity{
		UID:   token.UID,
		Roles: rolesFromClaims(token.Claims),
	}, nil
}

func rolesFromClaims(claims map[string]interface{}) []string {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		// Accounts without a roles claim are plain clients.
		return []string{entity.RoleClient}
	}

	var roles []string
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	if len(roles) == 0 {
		roles = []string{entity.RoleClient}
	}
	return roles
}
