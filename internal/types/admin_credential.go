package types

// AdminCredential is the single management login row. Passwords are stored
// as bcrypt hashes.
type AdminCredential struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"column:username;not null" json:"username"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
}

func (AdminCredential) TableName() string { return "admin_credential" }
