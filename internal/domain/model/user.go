package model

import (
	"fmt"
	"strings"
	"time"

	"sim-activation-portal/internal/domain"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RolePro   Role = "pro"
	RoleUser  Role = "user"
)

func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RolePro:
		return RolePro
	default:
		return RoleUser
	}
}

// User is a customer account. BillingCustomerID is the payment provider's
// customer reference; it is set once billing details are filled in.
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Surname           string    `json:"surname"`
	Phone             string    `json:"phone"`
	Address           Address   `json:"adresse"`
	VATNumber         string    `json:"tva"`
	CompanyName       string    `json:"raisonSocial"`
	IsPro             bool      `json:"isPro"`
	Role              Role      `json:"role"`
	BillingCustomerID string    `json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Address is the postal address used on invoices.
type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// ProfileInput carries a self-service profile update. Nil fields are kept.
type ProfileInput struct {
	Name        *string
	Surname     *string
	Phone       *string
	Address     *Address
	VATNumber   *string
	CompanyName *string
	IsPro       *bool
}

func NewUser(id, email, name string, role Role) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      ParseRole(string(role)),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UpdateProfile applies in. The name is mandatory on every update.
func (u *User) UpdateProfile(in ProfileInput) error {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidArgument)
	}
	u.Name = strings.TrimSpace(*in.Name)
	if in.Surname != nil {
		u.Surname = strings.TrimSpace(*in.Surname)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	if in.VATNumber != nil {
		u.VATNumber = strings.ToUpper(strings.ReplaceAll(*in.VATNumber, " ", ""))
	}
	if in.CompanyName != nil {
		u.CompanyName = strings.TrimSpace(*in.CompanyName)
	}
	if in.IsPro != nil {
		u.IsPro = *in.IsPro
	}
	return nil
}

// UserBillingState is the authorization snapshot used by the activation flow.
type UserBillingState struct {
	UserID                      string
	HasBillingProfileConfigured bool
	Role                        Role
}

func (u *User) BillingState() UserBillingState {
	return UserBillingState{
		UserID:                      u.ID,
		HasBillingProfileConfigured: u.BillingCustomerID != "",
		Role:                        u.Role,
	}
}

// NeedsOnboarding is true when the user must set up billing before buying.
func (s UserBillingState) NeedsOnboarding() bool {
	return !s.HasBillingProfileConfigured && s.Role != RoleAdmin
}
