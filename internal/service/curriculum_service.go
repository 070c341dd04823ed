package service

import (
	"certify_backend/internal/model"
	"certify_backend/internal/repository"
	"certify_backend/internal/util"
	"context"
	"time"
)

type TestOutline struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	PassingScore   int        `json:"passingScore"`
	TimeLimit      int        `json:"timeLimit"`
	TotalQuestions int        `json:"totalQuestions"`
	Locked         bool       `json:"locked"`
	AvailableFrom  *time.Time `json:"availableFrom,omitempty"`
	LastScore      *int       `json:"lastScore,omitempty"`
	Passed         bool       `json:"passed"`
}

type ContentOutline struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	Completed   bool   `json:"completed"`
}

type SubTopicOutline struct {
	ID        uint             `json:"id"`
	Title     string           `json:"title"`
	Completed bool             `json:"completed"`
	Contents  []ContentOutline `json:"contents"`
	Test      *TestOutline     `json:"test,omitempty"`
}

type LevelOutline struct {
	ID        uint              `json:"id"`
	Title     string            `json:"title"`
	Completed bool              `json:"completed"`
	SubTopics []SubTopicOutline `json:"subTopics"`
	Test      *TestOutline      `json:"test,omitempty"`
}

type ModuleOutline struct {
	ID                 uint           `json:"id"`
	Title              string         `json:"title"`
	ProgressPercentage int            `json:"progressPercentage"`
	Levels             []LevelOutline `json:"levels"`
	Test               *TestOutline   `json:"test,omitempty"`
}

// CurriculumService renders the module tree with the user's completion and
// the lock state of every test, using the same predicates as submission.
type CurriculumService struct {
	Curriculum  *repository.CurriculumRepository
	Tests       *repository.TestRepository
	Results     *repository.TestResultRepository
	Completions *repository.ContentCompletionRepository
	Enrollments *repository.EnrollmentRepository
	Progress    *ProgressService
	Now         func() time.Time
}

func NewCurriculumService(
	curriculum *repository.CurriculumRepository,
	tests *repository.TestRepository,
	results *repository.TestResultRepository,
	completions *repository.ContentCompletionRepository,
	enrollments *repository.EnrollmentRepository,
	progress *ProgressService,
) *CurriculumService {
	return &CurriculumService{
		Curriculum:  curriculum,
		Tests:       tests,
		Results:     results,
		Completions: completions,
		Enrollments: enrollments,
		Progress:    progress,
		Now:         time.Now,
	}
}

func (s *CurriculumService) GetModuleOutline(ctx context.Context, userID, moduleID uint) (*ModuleOutline, error) {
	module, err := s.Curriculum.FindModuleTree(ctx, moduleID)
	if err != nil {
		return nil, notFound(err, util.ErrModuleNotFound)
	}
	enrollment, err := s.Progress.requireEnrollment(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	var levelIDs, subTopicIDs, contentIDs []uint
	for _, l := range module.Levels {
		levelIDs = append(levelIDs, l.ID)
		for _, st := range l.SubTopics {
			subTopicIDs = append(subTopicIDs, st.ID)
			for _, c := range st.Contents {
				contentIDs = append(contentIDs, c.ID)
			}
		}
	}

	contentDone, err := s.Completions.CompletedSet(ctx, userID, contentIDs)
	if err != nil {
		return nil, err
	}
	completedIDs, err := s.Enrollments.CompletedSubTopicIDs(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	subTopicDone := make(map[uint]bool, len(completedIDs))
	for _, id := range completedIDs {
		subTopicDone[id] = true
	}

	tests, err := s.Tests.ListForModule(ctx, moduleID, levelIDs, subTopicIDs)
	if err != nil {
		return nil, err
	}
	byScope := make(map[model.TestKind]map[uint]model.Test)
	testIDs := make([]uint, 0, len(tests))
	for _, t := range tests {
		if !t.IsActive {
			continue
		}
		if byScope[t.Kind] == nil {
			byScope[t.Kind] = map[uint]model.Test{}
		}
		byScope[t.Kind][t.ScopeID] = t
		testIDs = append(testIDs, t.ID)
	}
	results, err := s.Results.MapByTests(ctx, userID, testIDs)
	if err != nil {
		return nil, err
	}

	outlineTest := func(kind model.TestKind, scopeID uint, locked bool) *TestOutline {
		t, ok := byScope[kind][scopeID]
		if !ok {
			return nil
		}
		out := &TestOutline{
			ID:             t.ID,
			Title:          t.Title,
			PassingScore:   t.PassingScore,
			TimeLimit:      t.TimeLimit,
			TotalQuestions: t.TotalQuestions,
			Locked:         locked,
		}
		if r, ok := results[t.ID]; ok {
			score := r.Score
			out.LastScore = &score
			out.Passed = r.Passed
		}
		return out
	}

	outline := &ModuleOutline{
		ID:                 module.ID,
		Title:              module.Title,
		ProgressPercentage: enrollment.ProgressPercentage,
		Levels:             make([]LevelOutline, 0, len(module.Levels)),
	}

	var moduleIDs []uint
	for _, l := range module.Levels {
		lo := LevelOutline{ID: l.ID, Title: l.Title, SubTopics: make([]SubTopicOutline, 0, len(l.SubTopics))}
		ids := make([]uint, 0, len(l.SubTopics))

		for _, st := range l.SubTopics {
			ids = append(ids, st.ID)
			so := SubTopicOutline{
				ID:        st.ID,
				Title:     st.Title,
				Completed: subTopicDone[st.ID],
				Contents:  make([]ContentOutline, 0, len(st.Contents)),
			}
			published := make([]uint, 0, len(st.Contents))
			for _, c := range st.Contents {
				published = append(published, c.ID)
				so.Contents = append(so.Contents, ContentOutline{
					ID:          c.ID,
					Title:       c.Title,
					ContentType: c.ContentType,
					Completed:   contentDone[c.ID],
				})
			}
			so.Test = outlineTest(model.TestKindSubTopic, st.ID, ContentDone(published, contentDone) != nil)
			lo.SubTopics = append(lo.SubTopics, so)
		}

		moduleIDs = append(moduleIDs, ids...)
		lo.Completed = LevelDone(ids, subTopicDone)
		lo.Test = outlineTest(model.TestKindLevel, l.ID, !lo.Completed)
		outline.Levels = append(outline.Levels, lo)
	}

	examOpen := enrollment.ExamDate == nil || !s.Now().Before(*enrollment.ExamDate)
	outline.Test = outlineTest(model.TestKindModule, module.ID, enrollment.ProgressPercentage < 100 || !LevelDone(moduleIDs, subTopicDone) || !examOpen)
	if outline.Test != nil {
		outline.Test.AvailableFrom = enrollment.ExamDate
	}
	return outline, nil
}
