package identity

import (
	"context"
	"time"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

const bcryptCost = 12

// User is an operator who can act against registers. Managers additionally
// carry a supervisor code hash used to authorize audits and handoffs.
type User struct {
	shared.BaseEntity
	Username     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	DisplayName  string          `gorm:"type:varchar(100)"`
	Role         cashdrawer.Role `gorm:"type:varchar(20);not null;index"`
	PasswordHash string          `gorm:"type:varchar(100);not null"`
	CodeHash     string          `gorm:"type:varchar(100)"`
	Status       UserStatus      `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new active user with a hashed password
func NewUser(username, displayName, password string, role cashdrawer.Role) (*User, error) {
	if username == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "username is required")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "password must be at least 8 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "role is not valid")
	}

	passwordHash, err := hashSecret(password)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     username,
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: passwordHash,
		Status:       UserStatusActive,
	}, nil
}

// IsActive reports whether the user may operate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Actor returns the user's operation identity
func (u *User) Actor() cashdrawer.Actor {
	return cashdrawer.Actor{ID: u.ID, Role: u.Role}
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetSupervisorCode hashes and stores the out-of-band authorization code.
// Only managers hold one.
func (u *User) SetSupervisorCode(code string) error {
	if u.Role != cashdrawer.RoleManager {
		return shared.NewDomainError("VALIDATION_ERROR", "only managers hold supervisor codes")
	}
	if len(code) < 4 {
		return shared.NewDomainError("VALIDATION_ERROR", "supervisor code must be at least 4 characters")
	}
	hash, err := hashSecret(code)
	if err != nil {
		return err
	}
	u.CodeHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

// VerifySupervisorCode verifies the provided code against the stored hash
func (u *User) VerifySupervisorCode(code string) bool {
	if u.CodeHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.CodeHash), []byte(code)) == nil
}

// Deactivate blocks the user from further operations
func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindActiveByRole(ctx context.Context, role cashdrawer.Role) ([]User, error)
	Save(ctx context.Context, user *User) error
}
