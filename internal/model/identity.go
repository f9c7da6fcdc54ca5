package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCounselor Role = "konselor"
	RoleUser      Role = "user"
)

// Identity is the directory view of an account used by authorization checks.
type Identity struct {
	UserID           uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             Role      `json:"role"`
	IsActive         bool      `json:"is_active"`
	HasProfile       bool      `json:"has_profile"`
	AcceptingClients bool      `json:"is_accepting_patients"`
	TelegramChatID   *int64    `json:"-"`
}

func (i *Identity) IsCounselor() bool { return i.Role == RoleCounselor }
func (i *Identity) IsAdmin() bool     { return i.Role == RoleAdmin }

// CounselorProfile is the counselor-specific part of an account.
type CounselorProfile struct {
	UserID           uuid.UUID `json:"user_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Picture          string    `json:"picture,omitempty"`
	Specialization   string    `json:"specialization,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	IsActive         bool      `json:"is_active"`
	AcceptingClients bool      `json:"is_accepting_patients"`
	CreatedAt        time.Time `json:"created_at"`
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture,omitempty"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
