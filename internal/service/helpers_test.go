package service

import (
	"certify_backend/internal/config"
	"certify_backend/internal/model"
	"certify_backend/internal/repository"
	"certify_backend/internal/util"
	"certify_backend/pkg/database"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// setupTestDB opens a private in-memory database with the real migrations.
// A single connection keeps the memory database alive and serializes writers.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	db          *gorm.DB
	clock       *clock
	storage     *MemoryStorageProvider
	enrollments *repository.EnrollmentRepository
	completions *repository.ContentCompletionRepository
	results     *repository.TestResultRepository
	progress    *ProgressService
	submissions *SubmissionService
	certs       *CertificateService
	enrollSvc   *EnrollmentService
	curriculum  *CurriculumService
	reconciler  *ReconcileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	clk := &clock{now: baseTime}

	curriculumRepo := repository.NewCurriculumRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	completions := repository.NewContentCompletionRepository(db)
	tests := repository.NewTestRepository(db)
	results := repository.NewTestResultRepository(db)
	profiles := repository.NewProfileRepository(db)

	mem := NewMemoryStorageProvider()
	storage := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: util.StorageMemory}})
	storage.Provider = mem

	progress := NewProgressService(curriculumRepo, enrollments, completions)
	progress.Now = clk.Now
	certs := NewCertificateService(curriculumRepo, enrollments, profiles, tests, results, storage, 0)
	certs.Now = clk.Now
	submissions := NewSubmissionService(curriculumRepo, tests, results, enrollments, progress, certs)
	submissions.Now = clk.Now
	outline := NewCurriculumService(curriculumRepo, tests, results, completions, enrollments, progress)
	outline.Now = clk.Now
	reconciler := NewReconcileService(results, submissions, time.Hour)

	return &fixture{
		db:          db,
		clock:       clk,
		storage:     mem,
		enrollments: enrollments,
		completions: completions,
		results:     results,
		progress:    progress,
		submissions: submissions,
		certs:       certs,
		enrollSvc:   NewEnrollmentService(curriculumRepo, enrollments),
		curriculum:  outline,
		reconciler:  reconciler,
	}
}

// twoByTwo is a module of 2 levels × 2 subtopics, two published
// contents each, with a test at every tier.
func twoByTwo() database.ModuleSeed {
	st := func() database.SubTopicSeed {
		return database.SubTopicSeed{Published: 2, Test: &database.TestSeed{Questions: 10, PassingScore: 70}}
	}
	level := func() database.LevelSeed {
		return database.LevelSeed{
			SubTopics: []database.SubTopicSeed{st(), st()},
			Test:      &database.TestSeed{Questions: 5, PassingScore: 70},
		}
	}
	return database.ModuleSeed{
		Title:  "Certified Practitioner",
		Levels: []database.LevelSeed{level(), level()},
		Test:   &database.TestSeed{Questions: 10, PassingScore: 70},
	}
}

func (f *fixture) seed(t *testing.T, seed database.ModuleSeed) *database.SeededModule {
	t.Helper()
	m, err := database.SeedModule(f.db, seed)
	require.NoError(t, err)
	return m
}

func (f *fixture) enroll(t *testing.T, userID, moduleID uint) {
	t.Helper()
	_, err := f.enrollSvc.ActivateEnrollment(context.Background(), ActivateEnrollmentRequest{
		UserID:           userID,
		ModuleID:         moduleID,
		PaymentReference: fmt.Sprintf("ref-%d-%d", userID, moduleID),
	})
	require.NoError(t, err)
}

// completeSubTopic marks every published content of a subtopic complete.
func (f *fixture) completeSubTopic(t *testing.T, userID uint, st model.SubTopic) *CompletionState {
	t.Helper()
	var state *CompletionState
	for _, c := range st.Contents {
		if !c.IsPublished {
			continue
		}
		var err error
		state, err = f.progress.MarkContentComplete(context.Background(), userID, c.ID)
		require.NoError(t, err)
	}
	return state
}

func (f *fixture) completeAll(t *testing.T, userID uint, m *database.SeededModule) {
	t.Helper()
	for _, l := range m.Module.Levels {
		for _, st := range l.SubTopics {
			f.completeSubTopic(t, userID, st)
		}
	}
}

func (f *fixture) enrollment(t *testing.T, userID, moduleID uint) *model.Enrollment {
	t.Helper()
	e, err := f.enrollments.Find(context.Background(), userID, moduleID)
	require.NoError(t, err)
	return e
}

func subTopicRequest(m *database.SeededModule, userID uint, li, si, correct int) SubmitRequest {
	level := m.Module.Levels[li]
	st := level.SubTopics[si]
	test := m.Test(model.TestKindSubTopic, st.ID)
	return SubmitRequest{
		Kind:       model.TestKindSubTopic,
		UserID:     userID,
		TestID:     test.ID,
		ModuleID:   m.Module.ID,
		LevelID:    level.ID,
		SubTopicID: st.ID,
		Answers:    database.Answers(test, correct),
	}
}

func levelRequest(m *database.SeededModule, userID uint, li, correct int) SubmitRequest {
	level := m.Module.Levels[li]
	test := m.Test(model.TestKindLevel, level.ID)
	return SubmitRequest{
		Kind:     model.TestKindLevel,
		UserID:   userID,
		TestID:   test.ID,
		ModuleID: m.Module.ID,
		LevelID:  level.ID,
		Answers:  database.Answers(test, correct),
	}
}

func moduleRequest(m *database.SeededModule, userID uint, correct int) SubmitRequest {
	test := m.Test(model.TestKindModule, m.Module.ID)
	return SubmitRequest{
		Kind:     model.TestKindModule,
		UserID:   userID,
		TestID:   test.ID,
		ModuleID: m.Module.ID,
		Answers:  database.Answers(test, correct),
	}
}
