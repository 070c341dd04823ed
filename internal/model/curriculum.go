package model

const (
	ContentTypeText     = "text"
	ContentTypeVideo    = "video"
	ContentTypeDocument = "document"
)

// Module is the top of the learning hierarchy: Module → Level → SubTopic → Content.
// swagger:model Module
type Module struct {
	BaseModel
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Levels      []Level `gorm:"foreignKey:ModuleID" json:"levels,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

// swagger:model Level
type Level struct {
	BaseModel
	ModuleID   uint       `gorm:"index;not null" json:"moduleId"`
	OrderIndex int        `gorm:"default:0" json:"orderIndex"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	SubTopics  []SubTopic `gorm:"foreignKey:LevelID" json:"subTopics,omitempty"`
}

func (Level) TableName() string {
	return "levels"
}

// swagger:model SubTopic
type SubTopic struct {
	BaseModel
	LevelID    uint      `gorm:"index;not null" json:"levelId"`
	OrderIndex int       `gorm:"default:0" json:"orderIndex"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Contents   []Content `gorm:"foreignKey:SubTopicID" json:"contents,omitempty"`
}

func (SubTopic) TableName() string {
	return "sub_topics"
}

// Content is a leaf learning artifact. Only published content counts toward
// subtopic completion.
// swagger:model Content
type Content struct {
	BaseModel
	SubTopicID  uint   `gorm:"index;not null" json:"subTopicId"`
	OrderIndex  int    `gorm:"default:0" json:"orderIndex"`
	Title       string `gorm:"size:255;not null" json:"title"`
	ContentType string `gorm:"size:20;default:'text'" json:"contentType"`
	IsPublished bool   `json:"isPublished"`
}

func (Content) TableName() string {
	return "contents"
}
