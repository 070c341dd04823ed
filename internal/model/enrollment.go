package model

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// CertificateState is shared by Enrollment (module certificates) and
// UserProfile (aptitude certificate).
type CertificateState struct {
	CertificateIssued      bool       `gorm:"default:false" json:"certificateIssued"`
	CertificateAvailableAt *time.Time `json:"certificateAvailableAt,omitempty"`
	CertificateURL         string     `gorm:"size:500" json:"certificateUrl,omitempty"`
	CertificateNumber      string     `gorm:"size:64" json:"certificateNumber,omitempty"`
	CertificateIssuedAt    *time.Time `json:"certificateIssuedAt,omitempty"`
}

// Enrollment binds a user to a module. ProgressPercentage is a cached value
// written only by the progress aggregator.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID             uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_module" json:"userId"`
	ModuleID           uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_module" json:"moduleId"`
	PaymentStatus      string     `gorm:"size:20;default:'pending'" json:"paymentStatus"`
	PaymentReference   string     `gorm:"size:100;index" json:"paymentReference,omitempty"`
	ProgressPercentage int        `gorm:"default:0" json:"progressPercentage"`
	ExamDate           *time.Time `json:"examDate,omitempty"`
	ExamCompleted      bool       `gorm:"default:false" json:"examCompleted"`
	ExamScore          *int       `json:"examScore,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`

	CertificateState `gorm:"embedded"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) IsPaid() bool {
	return e.PaymentStatus == PaymentStatusCompleted
}

// EnrollmentSubTopic is one member of an enrollment's completed subtopic set.
// Rows are only ever inserted.
type EnrollmentSubTopic struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_subtopic" json:"userId"`
	ModuleID    uint      `gorm:"not null;index" json:"moduleId"`
	SubTopicID  uint      `gorm:"not null;uniqueIndex:idx_user_subtopic" json:"subTopicId"`
	CompletedAt time.Time `json:"completedAt"`
}

func (EnrollmentSubTopic) TableName() string {
	return "enrollment_sub_topics"
}

// EnrollmentLevelScore records the latest passing level test score.
type EnrollmentLevelScore struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_level" json:"userId"`
	ModuleID   uint      `gorm:"not null;index" json:"moduleId"`
	LevelID    uint      `gorm:"not null;uniqueIndex:idx_user_level" json:"levelId"`
	Score      int       `json:"score"`
	Passed     bool      `json:"passed"`
	RecordedAt time.Time `json:"recordedAt"`
}

func (EnrollmentLevelScore) TableName() string {
	return "enrollment_level_scores"
}

// ContentCompletion 记录用户对内容的完成状态
type ContentCompletion struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_content" json:"userId"`
	ContentID   uint      `gorm:"not null;uniqueIndex:idx_user_content" json:"contentId"`
	CompletedAt time.Time `json:"completedAt"`
}

func (ContentCompletion) TableName() string {
	return "content_completions"
}
