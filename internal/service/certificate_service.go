package service

import (
	"bytes"
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
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CertificateStateName string

const (
	CertificateNotEligible         CertificateStateName = "NotEligible"
	CertificatePendingAvailability CertificateStateName = "PendingAvailability"
	CertificateAvailable           CertificateStateName = "Available"
	CertificateIssued              CertificateStateName = "Issued"
)

// certificateNamespace seeds deterministic certificate numbers.
var certificateNamespace = uuid.MustParse("6f1c2f0e-7f55-4c1e-9b1a-2d8f3c5e9a10")

type CertificateStatus struct {
	ModuleID               *uint                `json:"moduleId,omitempty"`
	State                  CertificateStateName `json:"state"`
	CertificateAvailableAt *time.Time           `json:"certificateAvailableAt,omitempty"`
	IsCertificateAvailable bool                 `json:"isCertificateAvailable"`
	CertificateURL         string               `json:"certificateUrl,omitempty"`
	CertificateNumber      string               `json:"certificateNumber,omitempty"`
	IssuedAt               *time.Time           `json:"issuedAt,omitempty"`
}

// StatusAt derives the gate state from stored fields. Availability is a pure
// time predicate and is never stored.
func StatusAt(cs model.CertificateState, now time.Time) CertificateStatus {
	st := CertificateStatus{
		CertificateAvailableAt: cs.CertificateAvailableAt,
		CertificateURL:         cs.CertificateURL,
		CertificateNumber:      cs.CertificateNumber,
		IssuedAt:               cs.CertificateIssuedAt,
	}
	if cs.CertificateAvailableAt != nil {
		st.IsCertificateAvailable = !now.Before(*cs.CertificateAvailableAt)
	}

	switch {
	case cs.CertificateIssued:
		st.State = CertificateIssued
	case cs.CertificateAvailableAt == nil:
		st.State = CertificateNotEligible
	case st.IsCertificateAvailable:
		st.State = CertificateAvailable
	default:
		st.State = CertificatePendingAvailability
	}
	return st
}

// CertificateNumber is stable for a (user, scope) pair so a retried issuance
// writes the same artifact key.
func CertificateNumber(userID uint, moduleID *uint) string {
	name := fmt.Sprintf("user:%d:aptitude", userID)
	if moduleID != nil {
		name = fmt.Sprintf("user:%d:module:%d", userID, *moduleID)
	}
	return uuid.NewSHA1(certificateNamespace, []byte(name)).String()
}

type CertificateData struct {
	Number      string    `json:"certificateNumber"`
	UserID      uint      `json:"userId"`
	ModuleID    *uint     `json:"moduleId,omitempty"`
	ModuleTitle string    `json:"moduleTitle,omitempty"`
	Score       *int      `json:"score,omitempty"`
	IssuedAt    time.Time `json:"issuedAt"`
}

type RenderedCertificate struct {
	Body        []byte
	ContentType string
	Extension   string
}

// CertificateRenderer turns certificate data into a downloadable artifact.
type CertificateRenderer interface {
	Render(data CertificateData) (*RenderedCertificate, error)
}

// JSONCertificateRenderer writes a JSON manifest of the certificate.
type JSONCertificateRenderer struct{}

func (JSONCertificateRenderer) Render(data CertificateData) (*RenderedCertificate, error) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	return &RenderedCertificate{Body: body, ContentType: util.MimeJSON, Extension: "json"}, nil
}

type CertificateService struct {
	Curriculum  *repository.CurriculumRepository
	Enrollments *repository.EnrollmentRepository
	Profiles    *repository.ProfileRepository
	Tests       *repository.TestRepository
	Results     *repository.TestResultRepository
	Storage     *StorageService
	Renderer    CertificateRenderer
	Now         func() time.Time

	minExamScore atomic.Int64
}

func NewCertificateService(
	curriculum *repository.CurriculumRepository,
	enrollments *repository.EnrollmentRepository,
	profiles *repository.ProfileRepository,
	tests *repository.TestRepository,
	results *repository.TestResultRepository,
	storage *StorageService,
	minExamScore int,
) *CertificateService {
	s := &CertificateService{
		Curriculum:  curriculum,
		Enrollments: enrollments,
		Profiles:    profiles,
		Tests:       tests,
		Results:     results,
		Storage:     storage,
		Renderer:    JSONCertificateRenderer{},
		Now:         time.Now,
	}
	s.SetMinExamScore(minExamScore)
	return s
}

// SetMinExamScore changes the optional module exam floor; 0 disables it.
func (s *CertificateService) SetMinExamScore(score int) {
	s.minExamScore.Store(int64(score))
}

func (s *CertificateService) MinExamScore() int {
	return int(s.minExamScore.Load())
}

// Arm moves the gate from NotEligible to PendingAvailability. The
// availability instant is written only while unset, so repeated or racing
// pass events keep the first value.
func (s *CertificateService) Arm(ctx context.Context, userID uint, moduleID *uint, passedAt time.Time) (bool, error) {
	availableAt := passedAt.Add(util.CertificateAvailabilityDelay)
	if moduleID != nil {
		return s.Enrollments.ArmCertificate(ctx, userID, *moduleID, availableAt)
	}
	if err := s.Profiles.Ensure(ctx, userID); err != nil {
		return false, err
	}
	return s.Profiles.ArmCertificate(ctx, userID, availableAt)
}

func (s *CertificateService) loadState(ctx context.Context, userID uint, moduleID *uint) (model.CertificateState, *model.Enrollment, error) {
	if moduleID != nil {
		e, err := s.Enrollments.Find(ctx, userID, *moduleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.CertificateState{}, nil, util.ErrNotEnrolled
			}
			return model.CertificateState{}, nil, err
		}
		if !e.IsPaid() {
			return model.CertificateState{}, nil, util.ErrNotEnrolled
		}
		return e.CertificateState, e, nil
	}

	p, err := s.Profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.CertificateState{}, nil, nil
		}
		return model.CertificateState{}, nil, err
	}
	return p.CertificateState, nil, nil
}

// GetCertificateStatus evaluates the gate for a module, or for the profile
// level aptitude certificate when moduleID is nil.
func (s *CertificateService) GetCertificateStatus(ctx context.Context, userID uint, moduleID *uint) (*CertificateStatus, error) {
	if userID == 0 {
		return nil, util.ErrUnauthorized
	}
	cs, _, err := s.loadState(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	st := StatusAt(cs, s.Now())
	st.ModuleID = moduleID
	return &st, nil
}

// IssueCertificate generates the artifact once the gate is Available. Calls
// after issuance return the existing artifact.
func (s *CertificateService) IssueCertificate(ctx context.Context, userID uint, moduleID *uint) (*CertificateStatus, error) {
	ctx, span := tracing.Tracer.Start(ctx, "CertificateService.IssueCertificate")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	if userID == 0 {
		return nil, util.ErrUnauthorized
	}
	cs, enrollment, err := s.loadState(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	st := StatusAt(cs, now)
	st.ModuleID = moduleID
	if st.State == CertificateIssued {
		return &st, nil
	}

	data := CertificateData{
		Number:   CertificateNumber(userID, moduleID),
		UserID:   userID,
		ModuleID: moduleID,
		IssuedAt: now,
	}
	if moduleID != nil {
		if err := s.checkModuleGuards(ctx, enrollment); err != nil {
			return nil, err
		}
		data.Score = enrollment.ExamScore
		if m, err := s.Curriculum.FindModule(ctx, *moduleID); err == nil {
			data.ModuleTitle = m.Title
		}
	} else {
		score, err := s.checkAptitudeGuards(ctx, userID)
		if err != nil {
			return nil, err
		}
		data.Score = &score
	}

	switch st.State {
	case CertificateNotEligible:
		return nil, util.ErrNotEligible
	case CertificatePendingAvailability:
		return nil, util.ErrCertificateNotReady
	}

	rendered, err := s.Renderer.Render(data)
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	key := fmt.Sprintf("certificates/%s.%s", data.Number, rendered.Extension)
	url, err := s.Storage.Upload(ctx, key, bytes.NewReader(rendered.Body), int64(len(rendered.Body)), rendered.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload certificate: %w", err)
	}

	var issued bool
	if moduleID != nil {
		issued, err = s.Enrollments.MarkCertificateIssued(ctx, userID, *moduleID, url, data.Number, now)
	} else {
		issued, err = s.Profiles.MarkCertificateIssued(ctx, userID, url, data.Number, now)
	}
	if err != nil {
		return nil, fmt.Errorf("mark certificate issued: %w", err)
	}

	if issued {
		scope := "module"
		if moduleID == nil {
			scope = "aptitude"
		}
		monitoring.CertificatesIssued.WithLabelValues(scope).Inc()
		logger.Log.Info("certificate issued",
			zap.Uint("userID", userID),
			zap.String("scope", scope),
			zap.String("number", data.Number),
		)
	}

	// A concurrent request may have issued first; report whatever is stored.
	return s.GetCertificateStatus(ctx, userID, moduleID)
}

func (s *CertificateService) checkModuleGuards(ctx context.Context, e *model.Enrollment) error {
	if e.ProgressPercentage != 100 || !e.ExamCompleted {
		return util.ErrNotEligible
	}
	ids, err := s.Curriculum.ModuleSubTopicIDs(ctx, e.ModuleID)
	if err != nil {
		return err
	}
	done, err := allCompleted(ctx, s.Enrollments, e.UserID, ids)
	if err != nil {
		return err
	}
	if !done {
		return util.ErrNotEligible
	}
	if floor := s.MinExamScore(); floor > 0 {
		if e.ExamScore == nil || *e.ExamScore < floor {
			return util.ErrNotEligible
		}
	}
	return nil
}

func (s *CertificateService) checkAptitudeGuards(ctx context.Context, userID uint) (int, error) {
	t, err := s.Tests.FindByScope(ctx, model.TestKindAptitude, 0)
	if err != nil {
		return 0, notFound(err, util.ErrNotEligible)
	}
	r, err := s.Results.Find(ctx, userID, t.ID)
	if err != nil {
		return 0, notFound(err, util.ErrNotEligible)
	}
	if !r.Passed {
		return 0, util.ErrNotEligible
	}
	return r.Score, nil
}
