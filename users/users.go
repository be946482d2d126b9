package users

import "time"

// User is the profile returned by the identity API.
// The cached copy is only a presentation hint and is never used to authorize anything.
type User struct {
	ID        string     `json:"id"`                   // Unique identifier for the user
	Email     string     `json:"email"`                // User's email address
	Name      string     `json:"name,omitempty"`       // Display name, optional
	CreatedAt *time.Time `json:"created_at,omitempty"` // When the account was created
	UpdatedAt *time.Time `json:"updated_at,omitempty"` // When the account last changed
}

// DisplayName returns the name when set and the email otherwise.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
