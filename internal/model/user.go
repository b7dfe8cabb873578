package model

import "time"

// Role restricts what a session can reach: customers see their own
// bookings/credits, admins get the back-office.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is an account row. PasswordHash is nullable because guest checkout
// creates passwordless users; such users set a password later via register
// (upsert on email).
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CPF          *string   `json:"cpf,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	PasswordHash *string   `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPassword reports whether the account finished registration. Guest
// accounts created at checkout have no password until claimed.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
