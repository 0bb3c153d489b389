package models

// Staff roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a staff account that can operate the register.
type User struct {
	BaseModel
	Name         string `json:"name"`
	Phone        string `gorm:"uniqueIndex" json:"phone"`
	Role         string `gorm:"default:staff" json:"role"`
	PasswordHash string `json:"-"`
}
