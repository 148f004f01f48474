package domain

import "time"

// User is an account known to the service. Signup, login, and token issuance
// live in a separate auth service; this table only backs the admin directory
// and uploader attribution.
type User struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Username  string    `gorm:"type:text;not null;uniqueIndex:idx_users_username" json:"username"`
	Email     string    `gorm:"type:text;not null;uniqueIndex:idx_users_email" json:"email"`
	IsAdmin   bool      `gorm:"not null;default:false;index:idx_users_is_admin" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string {
	return "users"
}
