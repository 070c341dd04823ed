package model

import (
	"time"

	"gorm.io/datatypes"
)

// TestResult holds the latest attempt of a user on a test. (UserID, TestID) is
// unique; a resubmission overwrites the row in place.
// swagger:model TestResult
type TestResult struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint           `gorm:"not null;uniqueIndex:idx_result_user_test" json:"userId"`
	TestID         uint           `gorm:"not null;uniqueIndex:idx_result_user_test" json:"testId"`
	Kind           TestKind       `gorm:"size:20;not null;index" json:"kind"`
	ScopeID        uint           `gorm:"not null" json:"scopeId"`
	ModuleID       uint           `gorm:"index" json:"moduleId"`
	Score          int            `gorm:"not null" json:"score"`
	TotalQuestions int            `gorm:"not null" json:"totalQuestions"`
	CorrectAnswers int            `gorm:"not null" json:"correctAnswers"`
	Answers        datatypes.JSON `json:"answers"`
	Passed         bool           `gorm:"index" json:"passed"`
	TimeSpent      int            `json:"timeSpent"`
	CompletedAt    time.Time      `json:"completedAt"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"index" json:"updatedAt"`
}

func (TestResult) TableName() string {
	return "test_results"
}
