package user

import "time"

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
	RoleAdmin  Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleBuyer || r == RoleAdmin
}

// User is a marketplace account. Role is fixed at registration — there is no
// operation that changes it. Accounts are never hard-deleted; admins toggle
// Active instead.
type User struct {
	ID             int64     `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	PasswordHash   string    `json:"-" db:"password"`
	Email          string    `json:"email" db:"email"`
	Role           Role      `json:"role" db:"role"`
	Name           string    `json:"name" db:"name"`
	Address        string    `json:"address" db:"address"`
	Phone          string    `json:"phone" db:"phone"`
	Bio            string    `json:"bio" db:"bio"`
	ProfilePicture string    `json:"profile_picture" db:"profile_picture"`
	Active         bool      `json:"active" db:"active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
