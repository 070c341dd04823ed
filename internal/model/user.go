package model

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// UserProfile carries the platform-wide certificate earned through the
// aptitude test. Identity and credentials live in the auth service.
// swagger:model UserProfile
type UserProfile struct {
	BaseModel
	UserID uint `gorm:"uniqueIndex;not null" json:"userId"`

	CertificateState `gorm:"embedded"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
