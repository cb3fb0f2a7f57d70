package auth

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// RoleUser is the default role every provisioned user gets
	RoleUser = "user"
	// RoleAdmin grants catalog write access
	RoleAdmin = "admin"
)

// User is the user model. Exactly one record exists per external SubjectID;
// the unique index on subject_id is what makes first-login provisioning
// safe under concurrent requests.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	SubjectID     string     `bun:"subject_id,notnull,unique" json:"subject_id,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	Name          string     `bun:"name" json:"name,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	Roles         []string   `bun:"roles,type:jsonb" json:"roles,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasRole reports whether the stored role set contains role.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Roles, role)
}

// Profile is the public projection of a user record. It is what auth
// responses return; it never carries provider tokens or internal columns.
type Profile struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Name   string   `json:"name,omitempty"`
	Avatar string   `json:"avatar,omitempty"`
	Phone  string   `json:"phone_number,omitempty"`
	Roles  []string `json:"roles"`
}

// PublicProfile builds the public projection of the user.
func (u *User) PublicProfile() *Profile {
	if u == nil {
		return nil
	}
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return &Profile{
		ID:     u.ID.String(),
		Email:  u.Email,
		Name:   u.Name,
		Avatar: u.AvatarURL,
		Phone:  u.Phone,
		Roles:  roles,
	}
}
