package service

import (
	"certify_backend/internal/model"
	"certify_backend/internal/repository"
	"certify_backend/internal/util"
	"certify_backend/pkg/logger"
	"certify_backend/pkg/monitoring"
	"certify_backend/pkg/tracing"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SubmitRequest is one attempt. Answers maps question id to the selected
// option id; UserID and TestID come from the session and the path.
type SubmitRequest struct {
	Kind       model.TestKind `json:"kind" binding:"required"`
	UserID     uint           `json:"-"`
	TestID     uint           `json:"-"`
	ModuleID   uint           `json:"moduleId"`
	LevelID    uint           `json:"levelId"`
	SubTopicID uint           `json:"subTopicId"`
	Answers    map[uint]uint  `json:"answers"`
	TimeSpent  int            `json:"timeSpent"`
}

type SubmitResult struct {
	TestID         uint           `json:"testId"`
	Kind           model.TestKind `json:"kind"`
	Score          int            `json:"score"`
	Passed         bool           `json:"passed"`
	CorrectAnswers int            `json:"correctAnswers"`
	TotalQuestions int            `json:"totalQuestions"`
	PassingScore   int            `json:"passingScore"`
	CompletedAt    time.Time      `json:"completedAt"`
}

// SubmissionService scores test attempts and keeps one result per (user, test).
type SubmissionService struct {
	Curriculum   *repository.CurriculumRepository
	Tests        *repository.TestRepository
	Results      *repository.TestResultRepository
	Enrollments  *repository.EnrollmentRepository
	Progress     *ProgressService
	Certificates *CertificateService
	Now          func() time.Time
}

func NewSubmissionService(
	curriculum *repository.CurriculumRepository,
	tests *repository.TestRepository,
	results *repository.TestResultRepository,
	enrollments *repository.EnrollmentRepository,
	progress *ProgressService,
	certificates *CertificateService,
) *SubmissionService {
	return &SubmissionService{
		Curriculum:   curriculum,
		Tests:        tests,
		Results:      results,
		Enrollments:  enrollments,
		Progress:     progress,
		Certificates: certificates,
		Now:          time.Now,
	}
}

// Score counts correct answers and derives the percentage. total is the
// test's declared question count when positive, otherwise the number of
// questions loaded.
func Score(questions []model.TestQuestion, answers map[uint]uint, declaredTotal int) (correct, total, score int) {
	total = declaredTotal
	if total <= 0 {
		total = len(questions)
	}
	for _, q := range questions {
		selected, ok := answers[q.ID]
		if !ok {
			continue
		}
		for _, o := range q.Options {
			if o.ID == selected && o.IsCorrect {
				correct++
				break
			}
		}
	}
	if total == 0 {
		return correct, 0, 0
	}
	score = int(math.Round(100 * float64(correct) / float64(total)))
	if score > 100 {
		score = 100
	}
	return correct, total, score
}

func validateRequest(req *SubmitRequest) error {
	if req.UserID == 0 {
		return util.ErrUnauthorized
	}
	if !req.Kind.Valid() {
		return util.ErrInvalidTestKind
	}
	if req.TestID == 0 {
		return util.ErrMissingScope
	}
	switch req.Kind {
	case model.TestKindSubTopic:
		if req.ModuleID == 0 || req.LevelID == 0 || req.SubTopicID == 0 {
			return util.ErrMissingScope
		}
	case model.TestKindLevel:
		if req.ModuleID == 0 || req.LevelID == 0 {
			return util.ErrMissingScope
		}
	case model.TestKindModule:
		if req.ModuleID == 0 {
			return util.ErrMissingScope
		}
	case model.TestKindAptitude:
		req.ModuleID, req.LevelID, req.SubTopicID = 0, 0, 0
	}
	if req.Answers == nil {
		return util.ErrMalformedAnswers
	}
	return nil
}

// validateAnswers rejects answers to questions outside the test and options
// that belong to another question.
func validateAnswers(questions []model.TestQuestion, answers map[uint]uint) error {
	options := make(map[uint]map[uint]bool, len(questions))
	for _, q := range questions {
		set := make(map[uint]bool, len(q.Options))
		for _, o := range q.Options {
			set[o.ID] = true
		}
		options[q.ID] = set
	}
	for qid, oid := range answers {
		set, ok := options[qid]
		if !ok || !set[oid] {
			return util.ErrMalformedAnswers
		}
	}
	return nil
}

// resolveScope checks that the request's scope ids exist, nest correctly and
// own the test.
func (s *SubmissionService) resolveScope(ctx context.Context, req *SubmitRequest, test *model.Test) error {
	if test.Kind != req.Kind {
		return util.ErrScopeMismatch
	}

	switch req.Kind {
	case model.TestKindSubTopic:
		st, err := s.Curriculum.FindSubTopic(ctx, req.SubTopicID)
		if err != nil {
			return notFound(err, util.ErrSubTopicNotFound)
		}
		level, err := s.Curriculum.FindLevel(ctx, req.LevelID)
		if err != nil {
			return notFound(err, util.ErrLevelNotFound)
		}
		if st.LevelID != level.ID || level.ModuleID != req.ModuleID || test.ScopeID != st.ID {
			return util.ErrScopeMismatch
		}
	case model.TestKindLevel:
		level, err := s.Curriculum.FindLevel(ctx, req.LevelID)
		if err != nil {
			return notFound(err, util.ErrLevelNotFound)
		}
		if level.ModuleID != req.ModuleID || test.ScopeID != level.ID {
			return util.ErrScopeMismatch
		}
	case model.TestKindModule:
		if _, err := s.Curriculum.FindModule(ctx, req.ModuleID); err != nil {
			return notFound(err, util.ErrModuleNotFound)
		}
		if test.ScopeID != req.ModuleID {
			return util.ErrScopeMismatch
		}
	}
	return nil
}

// checkUnlocked enforces that the parent of the test is complete.
func (s *SubmissionService) checkUnlocked(ctx context.Context, req *SubmitRequest, e *model.Enrollment) error {
	switch req.Kind {
	case model.TestKindSubTopic:
		err := s.Progress.SubTopicContentComplete(ctx, req.UserID, req.SubTopicID)
		if isIncomplete(err) {
			return util.ErrTestLocked
		}
		return err
	case model.TestKindLevel:
		done, err := s.Progress.LevelCompleted(ctx, req.UserID, req.LevelID)
		if err != nil {
			return err
		}
		if !done {
			return util.ErrTestLocked
		}
	case model.TestKindModule:
		if e.ProgressPercentage < 100 {
			return util.ErrTestLocked
		}
		done, err := s.Progress.ModuleCompleted(ctx, req.UserID, req.ModuleID)
		if err != nil {
			return err
		}
		if !done {
			return util.ErrTestLocked
		}
		if e.ExamDate != nil && s.Now().Before(*e.ExamDate) {
			return util.ErrExamNotYetAvailable
		}
	}
	return nil
}

// SubmitTest validates, scores and stores an attempt. Nothing is written when
// validation fails. Once the result is stored the call succeeds even if the
// follow-up bookkeeping fails; that work is logged and redone by the reconciler.
func (s *SubmissionService) SubmitTest(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SubmissionService.SubmitTest")
	defer span.End()
	span.SetAttributes(
		attribute.String("test.kind", string(req.Kind)),
		attribute.Int64("test.id", int64(req.TestID)),
		attribute.Int64("user.id", int64(req.UserID)),
	)

	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	test, err := s.Tests.FindWithQuestions(ctx, req.TestID)
	if err != nil {
		return nil, notFound(err, util.ErrTestNotFound)
	}
	if !test.IsActive {
		return nil, util.ErrTestNotFound
	}
	if err := s.resolveScope(ctx, &req, test); err != nil {
		return nil, err
	}
	if len(test.Questions) == 0 {
		return nil, util.ErrTestHasNoQuestion
	}
	if err := validateAnswers(test.Questions, req.Answers); err != nil {
		return nil, err
	}

	var enrollment *model.Enrollment
	if req.Kind != model.TestKindAptitude {
		if enrollment, err = s.Progress.requireEnrollment(ctx, req.UserID, req.ModuleID); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnlocked(ctx, &req, enrollment); err != nil {
		return nil, err
	}

	correct, total, score := Score(test.Questions, req.Answers, test.TotalQuestions)
	answers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, util.ErrMalformedAnswers
	}

	now := s.Now()
	result := &model.TestResult{
		UserID:         req.UserID,
		TestID:         test.ID,
		Kind:           test.Kind,
		ScopeID:        test.ScopeID,
		ModuleID:       req.ModuleID,
		Score:          score,
		TotalQuestions: total,
		CorrectAnswers: correct,
		Answers:        datatypes.JSON(answers),
		Passed:         score >= test.PassingScore,
		TimeSpent:      req.TimeSpent,
		CompletedAt:    now,
	}
	if err := s.Results.Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("store test result: %w", err)
	}

	monitoring.TestSubmissions.WithLabelValues(string(test.Kind), strconv.FormatBool(result.Passed)).Inc()
	logger.Log.Info("test submitted",
		zap.Uint("userID", req.UserID),
		zap.Uint("testID", test.ID),
		zap.String("kind", string(test.Kind)),
		zap.Int("score", score),
		zap.Bool("passed", result.Passed),
	)

	if result.Passed {
		if err := s.ApplyPass(ctx, result); err != nil {
			monitoring.CascadeFailures.WithLabelValues(string(test.Kind)).Inc()
			logger.Log.Warn("pass side effects failed",
				zap.Uint("userID", req.UserID),
				zap.Uint("testID", test.ID),
				zap.Error(err),
			)
		}
	}

	return &SubmitResult{
		TestID:         test.ID,
		Kind:           test.Kind,
		Score:          score,
		Passed:         result.Passed,
		CorrectAnswers: correct,
		TotalQuestions: total,
		PassingScore:   test.PassingScore,
		CompletedAt:    now,
	}, nil
}

// ApplyPass performs the downstream effects of a passed result. Every step is
// idempotent so it can be repeated for the same result.
func (s *SubmissionService) ApplyPass(ctx context.Context, r *model.TestResult) error {
	switch r.Kind {
	case model.TestKindSubTopic:
		_, err := s.Progress.MarkSubTopicComplete(ctx, r.UserID, r.ScopeID)
		return err

	case model.TestKindLevel:
		return s.Enrollments.UpsertLevelScore(ctx, &model.EnrollmentLevelScore{
			UserID:     r.UserID,
			ModuleID:   r.ModuleID,
			LevelID:    r.ScopeID,
			Score:      r.Score,
			Passed:     true,
			RecordedAt: r.CompletedAt,
		})

	case model.TestKindModule:
		var errs []error
		if err := s.Enrollments.MarkExamPassed(ctx, r.UserID, r.ModuleID, r.Score); err != nil {
			return fmt.Errorf("mark exam passed: %w", err)
		}
		if _, err := s.Enrollments.MarkCompleted(ctx, r.UserID, r.ModuleID, r.CompletedAt); err != nil {
			errs = append(errs, fmt.Errorf("mark enrollment completed: %w", err))
		}
		moduleID := r.ModuleID
		if _, err := s.Certificates.Arm(ctx, r.UserID, &moduleID, r.CompletedAt); err != nil {
			errs = append(errs, fmt.Errorf("arm certificate: %w", err))
		}
		return errors.Join(errs...)

	case model.TestKindAptitude:
		_, err := s.Certificates.Arm(ctx, r.UserID, nil, r.CompletedAt)
		return err
	}
	return nil
}
