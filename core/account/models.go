package account

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/safeschool/drillready/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var AllRoles = []string{RoleStudent, RoleAdmin}

// DrillRecord is one named readiness exercise and its latest outcome score.
// An Account holds at most one record per drill name.
type DrillRecord struct {
	DrillName string  `json:"drillName" db:"drill_name"`
	Score     float64 `json:"score" db:"score"`
}

type Account struct {
	ID                string        `json:"id" db:"id"`
	Name              string        `json:"name" db:"name"`
	Email             string        `json:"email" db:"email"`
	Role              string        `json:"role" db:"role"`
	SchoolID          string        `json:"schoolId" db:"school_id"`
	PasswordHash      []byte        `json:"-" db:"password_hash"`
	Drills            []DrillRecord `json:"drills"`
	DrillsCompleted   int           `json:"drillsCompleted" db:"drills_completed"`
	PreparednessScore int           `json:"preparednessScore" db:"preparedness_score"`
	CreatedAt         time.Time     `json:"createdAt" db:"created_at"` // UTC
	UpdatedAt         time.Time     `json:"updatedAt" db:"updated_at"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Account) IsStudent() bool {
	return a.Role == RoleStudent
}

// CompletedDrills returns the drill names in completion order.
func (a *Account) CompletedDrills() []string {
	names := make([]string, 0, len(a.Drills))
	for _, d := range a.Drills {
		names = append(names, d.DrillName)
	}
	return names
}

// NewAccount contains information needed to register a new Account.
// schoolId is required for both roles.
type NewAccount struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,drillrole"`
	SchoolID string `json:"schoolId" validate:"required"`
}

func (na *NewAccount) Validate(ctx context.Context, validate *validator.Validate, svc ServiceInterface) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Role = core.CleanString(na.Role, true /* lower */)
	na.SchoolID = core.CleanString(na.SchoolID)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, *na)
}
