package helpers

import (
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const RoleAdmin = "admin"

// Claims is the Supabase access token payload. Custom roles live in
// app_metadata, which only the service role can write.
type Claims struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
		Role      string   `json:"role,omitempty"`
		Roles     []string `json:"roles,omitempty"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject %q is not a user id: %w", c.Subject, err)
	}
	return id, nil
}

func (c *Claims) HasRole(role string) bool {
	return c.AppMetadata.Role == role || slices.Contains(c.AppMetadata.Roles, role)
}

func (c *Claims) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

func (c *Claims) FullName() string {
	if name, ok := c.UserMetadata["full_name"].(string); ok {
		return name
	}
	return ""
}
