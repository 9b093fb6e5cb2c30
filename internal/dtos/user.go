// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/iyunix/go-gemchat/internal/domain"
)

// UserResponseDTO is the public view of a user. Password and Google id are
// never exposed.
type UserResponseDTO struct {
	ID       uint    `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
	IsAdmin  bool    `json:"isAdmin"`
}

// AdminUserResponseDTO adds account metadata for admin endpoints.
type AdminUserResponseDTO struct {
	UserResponseDTO
	HasPassword  bool   `json:"hasPassword"`
	GoogleLinked bool   `json:"googleLinked"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// CredentialsRequestDTO is the body of register and login.
type CredentialsRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponseDTO is returned by register and login.
type AuthResponseDTO struct {
	Message string          `json:"message"`
	Token   string          `json:"token,omitempty"`
	User    UserResponseDTO `json:"user"`
}

// FromDomain maps a domain.User to UserResponseDTO for public API responses.
func FromDomain(user domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}
}

// ToAdminDomain maps a domain.User to AdminUserResponseDTO for admin endpoints.
func ToAdminDomain(user domain.User) AdminUserResponseDTO {
	return AdminUserResponseDTO{
		UserResponseDTO: FromDomain(user),
		HasPassword:     user.HasPassword(),
		GoogleLinked:    user.GoogleID != nil,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       user.UpdatedAt.Format(time.RFC3339),
	}
}

// ToAdminDomainSlice maps a slice of domain.User to []AdminUserResponseDTO.
func ToAdminDomainSlice(users []domain.User) []AdminUserResponseDTO {
	dtos := make([]AdminUserResponseDTO, len(users))
	for i, user := range users {
		dtos[i] = ToAdminDomain(user)
	}
	return dtos
}
