package domain

import (
	"strings"
	"time"
)

// TokenBundle holds the tokens returned by the identity provider for one login.
type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token"`
}

// IdentityClaims are the verified claims extracted from an ID token.
// They are derived once per login attempt and never mutated.
type IdentityClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	PictureURL    string `json:"picture,omitempty"`
}

// FullName joins the given and family names, skipping blank parts.
func (c IdentityClaims) FullName() string {
	parts := make([]string, 0, 2)
	if strings.TrimSpace(c.GivenName) != "" {
		parts = append(parts, c.GivenName)
	}
	if strings.TrimSpace(c.FamilyName) != "" {
		parts = append(parts, c.FamilyName)
	}
	return strings.Join(parts, " ")
}

// UserProfile is the application-facing view of a directory user.
type UserProfile struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// DirectoryRecord is the external directory's representation of a user.
// Unknown fields are ignored on parse.
type DirectoryRecord struct {
	ID     string                `json:"id"`
	Fields DirectoryRecordFields `json:"fields"`
}

// DirectoryRecordFields carries the subset of directory fields this service reads.
type DirectoryRecordFields struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	PictureURL string `json:"pictureUrl,omitempty"`
}

// ToProfile maps the record onto a UserProfile. A profile field is set only
// when the corresponding record field is non-blank, so blank directory values
// never clobber the zero value.
func (r DirectoryRecord) ToProfile() UserProfile {
	var p UserProfile
	if strings.TrimSpace(r.Fields.Name) != "" {
		p.Name = r.Fields.Name
	}
	if strings.TrimSpace(r.Fields.Email) != "" {
		p.Email = r.Fields.Email
	}
	if strings.TrimSpace(r.Fields.PictureURL) != "" {
		p.ProfilePictureURL = r.Fields.PictureURL
	}
	return p
}

// MigrationPayload creates a directory record for a legacy roster user.
type MigrationPayload struct {
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	PictureURL string `json:"pictureUrl"`
}

// NewMigrationPayload builds the migration request from verified claims.
func NewMigrationPayload(claims IdentityClaims) MigrationPayload {
	return MigrationPayload{
		Email:      claims.Email,
		FirstName:  claims.GivenName,
		LastName:   claims.FamilyName,
		PictureURL: claims.PictureURL,
	}
}

// Session associates a session ID with the tokens and profile established at
// login. ExpiresAt is stamped by the store when the session is saved.
type Session struct {
	ID        string      `json:"id"`
	Tokens    TokenBundle `json:"tokens"`
	Profile   UserProfile `json:"profile"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}
