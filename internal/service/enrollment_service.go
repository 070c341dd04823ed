package service

import (
	"certify_backend/internal/model"
	"certify_backend/internal/repository"
	"certify_backend/internal/util"
	"certify_backend/pkg/logger"
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type EnrollmentService struct {
	Curriculum  *repository.CurriculumRepository
	Enrollments *repository.EnrollmentRepository
}

func NewEnrollmentService(curriculum *repository.CurriculumRepository, enrollments *repository.EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{Curriculum: curriculum, Enrollments: enrollments}
}

type ActivateEnrollmentRequest struct {
	UserID           uint       `json:"userId" binding:"required"`
	ModuleID         uint       `json:"moduleId" binding:"required"`
	PaymentReference string     `json:"paymentReference" binding:"required"`
	ExamDate         *time.Time `json:"examDate"`
}

// ActivateEnrollment is called once the payment provider confirms a payment.
// It creates or completes the enrollment; replaying the same confirmation
// leaves the stored enrollment unchanged.
func (s *EnrollmentService) ActivateEnrollment(ctx context.Context, req ActivateEnrollmentRequest) (*model.Enrollment, error) {
	reference := strings.TrimSpace(req.PaymentReference)
	if req.UserID == 0 || req.ModuleID == 0 || reference == "" {
		return nil, util.ErrInvalidArgument
	}
	if _, err := s.Curriculum.FindModule(ctx, req.ModuleID); err != nil {
		return nil, notFound(err, util.ErrModuleNotFound)
	}

	if err := s.Enrollments.CreateIfAbsent(ctx, req.UserID, req.ModuleID); err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	paid, err := s.Enrollments.MarkPaid(ctx, req.UserID, req.ModuleID, reference)
	if err != nil {
		return nil, fmt.Errorf("mark enrollment paid: %w", err)
	}
	if req.ExamDate != nil {
		if err := s.Enrollments.SetExamDateIfUnset(ctx, req.UserID, req.ModuleID, *req.ExamDate); err != nil {
			return nil, fmt.Errorf("set exam date: %w", err)
		}
	}

	e, err := s.Enrollments.Find(ctx, req.UserID, req.ModuleID)
	if err != nil {
		return nil, err
	}
	if paid {
		logger.Log.Info("enrollment activated",
			zap.Uint("userID", req.UserID),
			zap.Uint("moduleID", req.ModuleID),
			zap.String("paymentReference", reference),
		)
	} else if e.PaymentReference != reference {
		logger.Log.Warn("enrollment already paid with another reference",
			zap.Uint("userID", req.UserID),
			zap.Uint("moduleID", req.ModuleID),
			zap.String("paymentReference", reference),
			zap.String("storedReference", e.PaymentReference),
		)
	}
	return e, nil
}

func (s *EnrollmentService) ListEnrollments(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	if userID == 0 {
		return nil, util.ErrUnauthorized
	}
	return s.Enrollments.ListByUser(ctx, userID)
}

// ScheduleExam sets the earliest instant the module test may be attempted.
// A nil date removes the restriction.
func (s *EnrollmentService) ScheduleExam(ctx context.Context, userID, moduleID uint, examDate *time.Time) (*model.Enrollment, error) {
	if userID == 0 || moduleID == 0 {
		return nil, util.ErrInvalidArgument
	}
	ok, err := s.Enrollments.SetExamDate(ctx, userID, moduleID, examDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrEnrollmentNotFound
	}
	return s.Enrollments.Find(ctx, userID, moduleID)
}
