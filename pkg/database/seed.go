package database

import (
	"certify_backend/internal/model"
	"fmt"

	"gorm.io/gorm"
)

// ModuleSeed describes a curriculum to insert for development and tests.
type ModuleSeed struct {
	Title  string
	Levels []LevelSeed
	Test   *TestSeed
}

type LevelSeed struct {
	Title     string
	SubTopics []SubTopicSeed
	Test      *TestSeed
}

type SubTopicSeed struct {
	Title string
	// Published and Drafts are the number of published and unpublished contents.
	Published int
	Drafts    int
	Test      *TestSeed
}

// TestSeed creates Questions questions, each with one correct and one wrong option.
type TestSeed struct {
	Title        string
	Questions    int
	PassingScore int
	TimeLimit    int
	Inactive     bool
}

// SeededModule is the inserted curriculum with its tests keyed by kind and scope.
type SeededModule struct {
	Module model.Module
	Tests  map[model.TestKind]map[uint]*model.Test
}

func (s *SeededModule) Test(kind model.TestKind, scopeID uint) *model.Test {
	return s.Tests[kind][scopeID]
}

// SubTopicIDs lists every subtopic id in hierarchy order.
func (s *SeededModule) SubTopicIDs() []uint {
	var ids []uint
	for _, l := range s.Module.Levels {
		for _, st := range l.SubTopics {
			ids = append(ids, st.ID)
		}
	}
	return ids
}

// SeedModule inserts a module tree in one transaction.
func SeedModule(db *gorm.DB, seed ModuleSeed) (*SeededModule, error) {
	out := &SeededModule{Tests: map[model.TestKind]map[uint]*model.Test{}}

	err := db.Transaction(func(tx *gorm.DB) error {
		out.Module = model.Module{Title: seed.Title}
		if err := tx.Create(&out.Module).Error; err != nil {
			return err
		}

		for li, ls := range seed.Levels {
			level := model.Level{ModuleID: out.Module.ID, OrderIndex: li, Title: ls.Title}
			if level.Title == "" {
				level.Title = fmt.Sprintf("Level %d", li+1)
			}
			if err := tx.Create(&level).Error; err != nil {
				return err
			}

			for si, ss := range ls.SubTopics {
				st := model.SubTopic{LevelID: level.ID, OrderIndex: si, Title: ss.Title}
				if st.Title == "" {
					st.Title = fmt.Sprintf("SubTopic %d.%d", li+1, si+1)
				}
				if err := tx.Create(&st).Error; err != nil {
					return err
				}

				for ci := 0; ci < ss.Published+ss.Drafts; ci++ {
					c := model.Content{
						SubTopicID:  st.ID,
						OrderIndex:  ci,
						Title:       fmt.Sprintf("Content %d", ci+1),
						ContentType: model.ContentTypeText,
						IsPublished: ci < ss.Published,
					}
					if err := tx.Create(&c).Error; err != nil {
						return err
					}
					st.Contents = append(st.Contents, c)
				}

				if ss.Test != nil {
					if err := out.addTest(tx, model.TestKindSubTopic, st.ID, ss.Test); err != nil {
						return err
					}
				}
				level.SubTopics = append(level.SubTopics, st)
			}

			if ls.Test != nil {
				if err := out.addTest(tx, model.TestKindLevel, level.ID, ls.Test); err != nil {
					return err
				}
			}
			out.Module.Levels = append(out.Module.Levels, level)
		}

		if seed.Test != nil {
			return out.addTest(tx, model.TestKindModule, out.Module.ID, seed.Test)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SeededModule) addTest(tx *gorm.DB, kind model.TestKind, scopeID uint, seed *TestSeed) error {
	t, err := createTest(tx, kind, scopeID, seed)
	if err != nil {
		return err
	}
	if s.Tests[kind] == nil {
		s.Tests[kind] = map[uint]*model.Test{}
	}
	s.Tests[kind][scopeID] = t
	return nil
}

// SeedAptitudeTest inserts the platform-wide test.
func SeedAptitudeTest(db *gorm.DB, seed TestSeed) (*model.Test, error) {
	return createTest(db, model.TestKindAptitude, 0, &seed)
}

func createTest(tx *gorm.DB, kind model.TestKind, scopeID uint, seed *TestSeed) (*model.Test, error) {
	t := &model.Test{
		Kind:           kind,
		ScopeID:        scopeID,
		Title:          seed.Title,
		TotalQuestions: seed.Questions,
		PassingScore:   seed.PassingScore,
		TimeLimit:      seed.TimeLimit,
		IsActive:       true,
	}
	if t.Title == "" {
		t.Title = fmt.Sprintf("%s test %d", kind, scopeID)
	}
	if t.PassingScore == 0 {
		t.PassingScore = model.DefaultPassingScore
	}
	if err := tx.Create(t).Error; err != nil {
		return nil, err
	}
	// IsActive has no column default, so an inactive test is written explicitly.
	if seed.Inactive {
		if err := tx.Model(t).Update("is_active", false).Error; err != nil {
			return nil, err
		}
		t.IsActive = false
	}

	for qi := 0; qi < seed.Questions; qi++ {
		q := model.TestQuestion{TestID: t.ID, OrderIndex: qi, Prompt: fmt.Sprintf("Question %d", qi+1)}
		if err := tx.Create(&q).Error; err != nil {
			return nil, err
		}
		q.Options = []model.QuestionOption{
			{QuestionID: q.ID, Text: "correct", IsCorrect: true},
			{QuestionID: q.ID, Text: "wrong", IsCorrect: false},
		}
		if err := tx.Create(&q.Options).Error; err != nil {
			return nil, err
		}
		t.Questions = append(t.Questions, q)
	}
	return t, nil
}

// Answers builds an answer map for t with exactly correct right answers.
func Answers(t *model.Test, correct int) map[uint]uint {
	answers := make(map[uint]uint, len(t.Questions))
	for i, q := range t.Questions {
		for _, o := range q.Options {
			if o.IsCorrect == (i < correct) {
				answers[q.ID] = o.ID
				break
			}
		}
	}
	return answers
}
