package entity

type UserRole string

const (
	RoleGuest UserRole = "guest"
	RoleStaff UserRole = "staff"
)

type User struct {
	Base
	Username string   `db:"username"`
	Email    string   `db:"email"`
	Phone    *string  `db:"phone"`
	Role     UserRole `db:"role"`
	IsActive bool     `db:"is_active"`
}
