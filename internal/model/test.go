package model

type TestKind string

const (
	TestKindSubTopic TestKind = "subtopic"
	TestKindLevel    TestKind = "level"
	TestKindModule   TestKind = "module"
	// TestKindAptitude is the platform-wide test behind the profile certificate.
	TestKindAptitude TestKind = "aptitude"
)

const DefaultPassingScore = 70

func (k TestKind) Valid() bool {
	switch k {
	case TestKindSubTopic, TestKindLevel, TestKindModule, TestKindAptitude:
		return true
	}
	return false
}

// Test is shared by all tiers; ScopeID points at the owning SubTopic, Level or
// Module depending on Kind, and is 0 for the aptitude test.
// swagger:model Test
type Test struct {
	BaseModel
	Kind           TestKind       `gorm:"size:20;not null;uniqueIndex:idx_test_scope" json:"kind"`
	ScopeID        uint           `gorm:"not null;uniqueIndex:idx_test_scope" json:"scopeId"`
	Title          string         `gorm:"size:255" json:"title"`
	TotalQuestions int            `gorm:"default:0" json:"totalQuestions"`
	PassingScore   int            `gorm:"default:70" json:"passingScore"`
	TimeLimit      int            `gorm:"default:0" json:"timeLimit"` // seconds
	IsActive       bool           `json:"isActive"`
	Questions      []TestQuestion `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

// swagger:model TestQuestion
type TestQuestion struct {
	BaseModel
	TestID     uint             `gorm:"index;not null" json:"testId"`
	OrderIndex int              `gorm:"default:0" json:"orderIndex"`
	Prompt     string           `gorm:"type:text" json:"prompt"`
	Options    []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

// swagger:model QuestionOption
type QuestionOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"size:500" json:"text"`
	IsCorrect  bool   `json:"-"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
