package service

import (
	"certify_backend/internal/model"
	"certify_backend/internal/repository"
	"certify_backend/internal/util"
	"certify_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// StructureCache caches module structure; see pkg/cache.
type StructureCache interface {
	ModuleSubTopics(ctx context.Context, moduleID uint) ([]uint, bool)
	SetModuleSubTopics(ctx context.Context, moduleID uint, ids []uint)
}

// CompletionState is returned after a completion event.
type CompletionState struct {
	ContentID          uint `json:"contentId,omitempty"`
	SubTopicID         uint `json:"subTopicId"`
	LevelID            uint `json:"levelId"`
	ModuleID           uint `json:"moduleId"`
	SubTopicCompleted  bool `json:"subTopicCompleted"`
	LevelCompleted     bool `json:"levelCompleted"`
	ProgressPercentage int  `json:"progressPercentage"`
}

type EnrollmentProgress struct {
	ModuleID           uint         `json:"moduleId"`
	ProgressPercentage int          `json:"progressPercentage"`
	CompletedSubTopics []uint       `json:"completedSubTopics"`
	TotalSubTopics     int          `json:"totalSubTopics"`
	ExamDate           *time.Time   `json:"examDate,omitempty"`
	ExamCompleted      bool         `json:"examCompleted"`
	ExamScore          *int         `json:"examScore,omitempty"`
	CompletedAt        *time.Time   `json:"completedAt,omitempty"`
	LevelScores        map[uint]int `json:"levelScores"`
}

// ProgressService maintains the cached progress of enrollments. It is the only
// writer of progress_percentage and of the completed subtopic set.
type ProgressService struct {
	Curriculum  *repository.CurriculumRepository
	Enrollments *repository.EnrollmentRepository
	Completions *repository.ContentCompletionRepository
	Cache       StructureCache
	Now         func() time.Time
}

func NewProgressService(
	curriculum *repository.CurriculumRepository,
	enrollments *repository.EnrollmentRepository,
	completions *repository.ContentCompletionRepository,
) *ProgressService {
	return &ProgressService{
		Curriculum:  curriculum,
		Enrollments: enrollments,
		Completions: completions,
		Now:         time.Now,
	}
}

// ComputeProgress is round(100*completed/total) clamped to [0,100]; a module
// without subtopics is at 0.
func ComputeProgress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(completed) / float64(total)))
	if p > 100 {
		return 100
	}
	return p
}

// ContentDone reports whether every published content is in done. A subtopic
// without published content is never done.
func ContentDone(published []uint, done map[uint]bool) error {
	if len(published) == 0 {
		return util.ErrSubTopicHasNoContent
	}
	for _, id := range published {
		if !done[id] {
			return util.ErrSubTopicIncomplete
		}
	}
	return nil
}

// LevelDone reports whether every subtopic of a level is completed. A level
// without subtopics is never done.
func LevelDone(subTopicIDs []uint, completed map[uint]bool) bool {
	if len(subTopicIDs) == 0 {
		return false
	}
	for _, id := range subTopicIDs {
		if !completed[id] {
			return false
		}
	}
	return true
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// requireEnrollment returns the paid enrollment for (user, module).
func (s *ProgressService) requireEnrollment(ctx context.Context, userID, moduleID uint) (*model.Enrollment, error) {
	if userID == 0 {
		return nil, util.ErrUnauthorized
	}
	e, err := s.Enrollments.Find(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	if !e.IsPaid() {
		return nil, util.ErrNotEnrolled
	}
	return e, nil
}

func (s *ProgressService) moduleSubTopicIDs(ctx context.Context, moduleID uint) ([]uint, error) {
	if s.Cache != nil {
		if ids, ok := s.Cache.ModuleSubTopics(ctx, moduleID); ok {
			return ids, nil
		}
	}
	ids, err := s.Curriculum.ModuleSubTopicIDs(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.SetModuleSubTopics(ctx, moduleID, ids)
	}
	return ids, nil
}

// SubTopicContentComplete checks the user's content completion for a subtopic.
func (s *ProgressService) SubTopicContentComplete(ctx context.Context, userID, subTopicID uint) error {
	published, err := s.Curriculum.PublishedContentIDs(ctx, subTopicID)
	if err != nil {
		return err
	}
	done, err := s.Completions.CompletedSet(ctx, userID, published)
	if err != nil {
		return err
	}
	return ContentDone(published, done)
}

// LevelCompleted reports whether every subtopic under the level is in the
// user's completed set.
func (s *ProgressService) LevelCompleted(ctx context.Context, userID, levelID uint) (bool, error) {
	ids, err := s.Curriculum.LevelSubTopicIDs(ctx, levelID)
	if err != nil {
		return false, err
	}
	return allCompleted(ctx, s.Enrollments, userID, ids)
}

// ModuleCompleted reports whether every subtopic of the module is in the
// user's completed set. Unlike the rounded percentage it never reports a
// module with one open subtopic as done.
func (s *ProgressService) ModuleCompleted(ctx context.Context, userID, moduleID uint) (bool, error) {
	ids, err := s.moduleSubTopicIDs(ctx, moduleID)
	if err != nil {
		return false, err
	}
	return allCompleted(ctx, s.Enrollments, userID, ids)
}

// allCompleted counts exact membership; an empty id list is never complete.
func allCompleted(ctx context.Context, enrollments *repository.EnrollmentRepository, userID uint, ids []uint) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}
	n, err := enrollments.CountCompletedAmong(ctx, userID, ids)
	if err != nil {
		return false, err
	}
	return int(n) == len(ids), nil
}

// MarkContentComplete records one content unit and promotes its subtopic when
// all published siblings are done. Repeating it is a no-op.
func (s *ProgressService) MarkContentComplete(ctx context.Context, userID, contentID uint) (*CompletionState, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.MarkContentComplete")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", int64(userID)), attribute.Int64("content.id", int64(contentID)))

	content, err := s.Curriculum.FindContent(ctx, contentID)
	if err != nil {
		return nil, notFound(err, util.ErrContentNotFound)
	}
	if !content.IsPublished {
		return nil, util.ErrContentNotFound
	}

	scope, err := s.Curriculum.ResolveSubTopic(ctx, content.SubTopicID)
	if err != nil {
		return nil, notFound(err, util.ErrSubTopicNotFound)
	}
	if _, err := s.requireEnrollment(ctx, userID, scope.ModuleID); err != nil {
		return nil, err
	}

	if err := s.Completions.MarkComplete(ctx, userID, contentID, s.Now()); err != nil {
		return nil, fmt.Errorf("mark content complete: %w", err)
	}

	state, err := s.promote(ctx, userID, scope)
	if err != nil && !isIncomplete(err) {
		return nil, err
	}
	state.ContentID = contentID
	return state, nil
}

// MarkSubTopicComplete adds a subtopic to the completed set. All of its
// published content must already be complete.
func (s *ProgressService) MarkSubTopicComplete(ctx context.Context, userID, subTopicID uint) (*CompletionState, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.MarkSubTopicComplete")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", int64(userID)), attribute.Int64("subtopic.id", int64(subTopicID)))

	scope, err := s.Curriculum.ResolveSubTopic(ctx, subTopicID)
	if err != nil {
		return nil, notFound(err, util.ErrSubTopicNotFound)
	}
	if _, err := s.requireEnrollment(ctx, userID, scope.ModuleID); err != nil {
		return nil, err
	}

	state, err := s.promote(ctx, userID, scope)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func isIncomplete(err error) bool {
	return errors.Is(err, util.ErrSubTopicIncomplete) || errors.Is(err, util.ErrSubTopicHasNoContent)
}

// promote adds the subtopic to the completed set when its content is done,
// then recomputes progress. The returned state is valid even when the content
// check fails.
func (s *ProgressService) promote(ctx context.Context, userID uint, scope *repository.SubTopicScope) (*CompletionState, error) {
	state := &CompletionState{
		SubTopicID: scope.SubTopicID,
		LevelID:    scope.LevelID,
		ModuleID:   scope.ModuleID,
	}

	contentErr := s.SubTopicContentComplete(ctx, userID, scope.SubTopicID)
	if contentErr != nil && !isIncomplete(contentErr) {
		return nil, contentErr
	}
	if contentErr == nil {
		if err := s.Enrollments.AddCompletedSubTopic(ctx, userID, scope.ModuleID, scope.SubTopicID, s.Now()); err != nil {
			return nil, fmt.Errorf("add completed subtopic: %w", err)
		}
	}

	pct, err := s.RecomputeProgress(ctx, userID, scope.ModuleID)
	if err != nil {
		return nil, err
	}
	state.ProgressPercentage = pct

	completed, err := s.Enrollments.CountCompletedAmong(ctx, userID, []uint{scope.SubTopicID})
	if err != nil {
		return nil, err
	}
	state.SubTopicCompleted = completed == 1

	if state.LevelCompleted, err = s.LevelCompleted(ctx, userID, scope.LevelID); err != nil {
		return nil, err
	}
	return state, contentErr
}

// RecomputeProgress rewrites the cached percentage from the completed set as
// it is right now. Concurrent callers converge because the value depends only
// on stored state.
func (s *ProgressService) RecomputeProgress(ctx context.Context, userID, moduleID uint) (int, error) {
	e, err := s.Enrollments.Find(ctx, userID, moduleID)
	if err != nil {
		return 0, notFound(err, util.ErrEnrollmentNotFound)
	}

	all, err := s.moduleSubTopicIDs(ctx, moduleID)
	if err != nil {
		return 0, err
	}
	done, err := s.Enrollments.CompletedSubTopicIDs(ctx, userID, moduleID)
	if err != nil {
		return 0, err
	}

	member := make(map[uint]bool, len(done))
	for _, id := range done {
		member[id] = true
	}
	n := 0
	for _, id := range all {
		if member[id] {
			n++
		}
	}

	pct := ComputeProgress(n, len(all))
	if pct != e.ProgressPercentage {
		if err := s.Enrollments.UpdateProgress(ctx, userID, moduleID, pct); err != nil {
			return 0, fmt.Errorf("update progress: %w", err)
		}
	}
	if pct == 100 && e.ExamCompleted && e.CompletedAt == nil {
		if _, err := s.Enrollments.MarkCompleted(ctx, userID, moduleID, s.Now()); err != nil {
			return 0, fmt.Errorf("mark enrollment completed: %w", err)
		}
	}
	return pct, nil
}

// GetEnrollmentProgress returns the cached progress without recomputing it.
func (s *ProgressService) GetEnrollmentProgress(ctx context.Context, userID, moduleID uint) (*EnrollmentProgress, error) {
	e, err := s.requireEnrollment(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	done, err := s.Enrollments.CompletedSubTopicIDs(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	all, err := s.moduleSubTopicIDs(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	scores, err := s.Enrollments.LevelScores(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	levelScores := make(map[uint]int, len(scores))
	for _, sc := range scores {
		levelScores[sc.LevelID] = sc.Score
	}
	if done == nil {
		done = []uint{}
	}

	return &EnrollmentProgress{
		ModuleID:           moduleID,
		ProgressPercentage: e.ProgressPercentage,
		CompletedSubTopics: done,
		TotalSubTopics:     len(all),
		ExamDate:           e.ExamDate,
		ExamCompleted:      e.ExamCompleted,
		ExamScore:          e.ExamScore,
		CompletedAt:        e.CompletedAt,
		LevelScores:        levelScores,
	}, nil
}
