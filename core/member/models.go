package member

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/auth"
)

// Member is an organization member profile: the role metadata and public
// directory entry for an account, keyed by the account's user ID.
type Member struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Avatar      string    `json:"avatar"`
	Bio         string    `json:"bio"`
	JoinedAt    time.Time `json:"joined_at"`  // UTC
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewMember contains information needed to create a new Member profile.
type NewMember struct {
	UserID      string    `json:"user_id" validate:"required"`
	DisplayName string    `json:"display_name" validate:"required"`
	Role        string    `json:"role" validate:"omitempty,memberrole"`
	Avatar      string    `json:"avatar" validate:"omitempty,url"`
	Bio         string    `json:"bio"`
	JoinedAt    time.Time `json:"joined_at"`
}

func (nm *NewMember) Validate(v *validator.Validate) error {
	nm.DisplayName = core.CleanString(nm.DisplayName)
	nm.Bio = core.CleanString(nm.Bio)
	if nm.Role == "" {
		nm.Role = auth.RoleMember
	}
	return v.Struct(nm)
}

// UpdateMember defines what information may be provided to modify an existing Member.
type UpdateMember struct {
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role" validate:"omitempty,memberrole"`
	Avatar      string  `json:"avatar" validate:"omitempty,url"`
	Bio         *string `json:"bio"`
}

func (um *UpdateMember) Validate(origMbr Member, v *validator.Validate) error {
	name := core.CleanString(um.DisplayName)
	if name != "" {
		um.DisplayName = name
	} else {
		um.DisplayName = origMbr.DisplayName
	}
	if um.Role == "" {
		um.Role = origMbr.Role
	}
	if um.Avatar == "" {
		um.Avatar = origMbr.Avatar
	}
	return v.Struct(um)
}
