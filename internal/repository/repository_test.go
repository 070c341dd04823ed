package repository

import (
	"certify_backend/internal/model"
	"certify_backend/pkg/database"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func seedModule(t *testing.T, db *gorm.DB) *database.SeededModule {
	t.Helper()
	m, err := database.SeedModule(db, database.ModuleSeed{
		Title: "repo",
		Levels: []database.LevelSeed{
			{SubTopics: []database.SubTopicSeed{{Published: 2, Drafts: 1, Test: &database.TestSeed{Questions: 3}}}, Test: &database.TestSeed{Questions: 2}},
			{SubTopics: []database.SubTopicSeed{{Published: 1}, {Published: 1}}},
		},
		Test: &database.TestSeed{Questions: 4},
	})
	require.NoError(t, err)
	return m
}

func TestCurriculumRepository(t *testing.T) {
	db := setupTestDB(t)
	m := seedModule(t, db)
	r := NewCurriculumRepository(db)
	ctx := context.Background()

	tree, err := r.FindModuleTree(ctx, m.Module.ID)
	require.NoError(t, err)
	require.Len(t, tree.Levels, 2)
	assert.Len(t, tree.Levels[0].SubTopics[0].Contents, 2)

	ids, err := r.ModuleSubTopicIDs(ctx, m.Module.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, m.SubTopicIDs(), ids)

	ids, err = r.LevelSubTopicIDs(ctx, m.Module.Levels[1].ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	published, err := r.PublishedContentIDs(ctx, m.Module.Levels[0].SubTopics[0].ID)
	require.NoError(t, err)
	assert.Len(t, published, 2)

	st := m.Module.Levels[1].SubTopics[1]
	scope, err := r.ResolveSubTopic(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, SubTopicScope{SubTopicID: st.ID, LevelID: m.Module.Levels[1].ID, ModuleID: m.Module.ID}, *scope)

	_, err = r.ResolveSubTopic(ctx, 9999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestTestRepository(t *testing.T) {
	db := setupTestDB(t)
	m := seedModule(t, db)
	r := NewTestRepository(db)
	ctx := context.Background()

	moduleTest := m.Test(model.TestKindModule, m.Module.ID)
	test, err := r.FindWithQuestions(ctx, moduleTest.ID)
	require.NoError(t, err)
	require.Len(t, test.Questions, 4)
	assert.Len(t, test.Questions[0].Options, 2)

	found, err := r.FindByScope(ctx, model.TestKindLevel, m.Module.Levels[0].ID)
	require.NoError(t, err)
	assert.Equal(t, m.Test(model.TestKindLevel, m.Module.Levels[0].ID).ID, found.ID)

	var levelIDs []uint
	for _, l := range m.Module.Levels {
		levelIDs = append(levelIDs, l.ID)
	}
	tests, err := r.ListForModule(ctx, m.Module.ID, levelIDs, m.SubTopicIDs())
	require.NoError(t, err)
	assert.Len(t, tests, 3)

	// tests of another module never leak in
	other := seedModule(t, db)
	tests, err = r.ListForModule(ctx, m.Module.ID, levelIDs, m.SubTopicIDs())
	require.NoError(t, err)
	assert.Len(t, tests, 3)
	assert.NotEqual(t, other.Module.ID, m.Module.ID)
}

func TestTestResultRepository_UpsertKeepsOneRow(t *testing.T) {
	db := setupTestDB(t)
	r := NewTestResultRepository(db)
	ctx := context.Background()

	first := &model.TestResult{UserID: 1, TestID: 5, Kind: model.TestKindLevel, ScopeID: 2, ModuleID: 1, Score: 40, TotalQuestions: 5, CorrectAnswers: 2, CompletedAt: t0}
	require.NoError(t, r.Upsert(ctx, first))
	second := &model.TestResult{UserID: 1, TestID: 5, Kind: model.TestKindLevel, ScopeID: 2, ModuleID: 1, Score: 80, TotalQuestions: 5, CorrectAnswers: 4, Passed: true, CompletedAt: t0.Add(time.Hour)}
	require.NoError(t, r.Upsert(ctx, second))

	n, err := r.Count(ctx, 1, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := r.Find(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 80, got.Score)
	assert.True(t, got.Passed)
	assert.True(t, got.CompletedAt.Equal(t0.Add(time.Hour)))

	byTest, err := r.MapByTests(ctx, 1, []uint{5, 6})
	require.NoError(t, err)
	assert.Len(t, byTest, 1)

	passed, err := r.ListPassedSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, passed, 1)
}

func TestEnrollmentRepository_ConditionalWrites(t *testing.T) {
	db := setupTestDB(t)
	r := NewEnrollmentRepository(db)
	ctx := context.Background()

	require.NoError(t, r.CreateIfAbsent(ctx, 1, 1))
	require.NoError(t, r.CreateIfAbsent(ctx, 1, 1))
	list, err := r.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	paid, err := r.MarkPaid(ctx, 1, 1, "a")
	require.NoError(t, err)
	assert.True(t, paid)
	paid, err = r.MarkPaid(ctx, 1, 1, "b")
	require.NoError(t, err)
	assert.False(t, paid)

	// completion needs both the exam and full progress
	done, err := r.MarkCompleted(ctx, 1, 1, t0)
	require.NoError(t, err)
	assert.False(t, done)
	require.NoError(t, r.UpdateProgress(ctx, 1, 1, 100))
	require.NoError(t, r.MarkExamPassed(ctx, 1, 1, 90))
	done, err = r.MarkCompleted(ctx, 1, 1, t0)
	require.NoError(t, err)
	assert.True(t, done)
	done, err = r.MarkCompleted(ctx, 1, 1, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, done)

	armed, err := r.ArmCertificate(ctx, 1, 1, t0.Add(48*time.Hour))
	require.NoError(t, err)
	assert.True(t, armed)
	armed, err = r.ArmCertificate(ctx, 1, 1, t0.Add(96*time.Hour))
	require.NoError(t, err)
	assert.False(t, armed)

	issued, err := r.MarkCertificateIssued(ctx, 1, 1, "u1", "n1", t0)
	require.NoError(t, err)
	assert.True(t, issued)
	issued, err = r.MarkCertificateIssued(ctx, 1, 1, "u2", "n2", t0)
	require.NoError(t, err)
	assert.False(t, issued)

	e, err := r.Find(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", e.PaymentReference)
	assert.True(t, e.CompletedAt.Equal(t0))
	assert.True(t, e.CertificateAvailableAt.Equal(t0.Add(48*time.Hour)))
	assert.Equal(t, "u1", e.CertificateURL)
}

func TestEnrollmentRepository_CompletedSet(t *testing.T) {
	db := setupTestDB(t)
	r := NewEnrollmentRepository(db)
	ctx := context.Background()

	require.NoError(t, r.AddCompletedSubTopic(ctx, 1, 1, 10, t0))
	require.NoError(t, r.AddCompletedSubTopic(ctx, 1, 1, 10, t0.Add(time.Hour)))
	require.NoError(t, r.AddCompletedSubTopic(ctx, 1, 1, 11, t0))
	require.NoError(t, r.AddCompletedSubTopic(ctx, 2, 1, 10, t0))

	ids, err := r.CompletedSubTopicIDs(ctx, 1, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{10, 11}, ids)

	n, err := r.CountCompletedAmong(ctx, 1, []uint{10, 12})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, r.UpsertLevelScore(ctx, &model.EnrollmentLevelScore{UserID: 1, ModuleID: 1, LevelID: 3, Score: 70, Passed: true, RecordedAt: t0}))
	require.NoError(t, r.UpsertLevelScore(ctx, &model.EnrollmentLevelScore{UserID: 1, ModuleID: 1, LevelID: 3, Score: 90, Passed: true, RecordedAt: t0}))
	scores, err := r.LevelScores(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 90, scores[0].Score)
}

func TestContentCompletionAndProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	c := NewContentCompletionRepository(db)
	require.NoError(t, c.MarkComplete(ctx, 1, 100, t0))
	require.NoError(t, c.MarkComplete(ctx, 1, 100, t0.Add(time.Hour)))
	set, err := c.CompletedSet(ctx, 1, []uint{100, 101})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{100: true}, set)

	p := NewProfileRepository(db)
	require.NoError(t, p.Ensure(ctx, 4))
	require.NoError(t, p.Ensure(ctx, 4))
	armed, err := p.ArmCertificate(ctx, 4, t0)
	require.NoError(t, err)
	assert.True(t, armed)
	armed, err = p.ArmCertificate(ctx, 4, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, armed)

	profile, err := p.FindByUserID(ctx, 4)
	require.NoError(t, err)
	assert.True(t, profile.CertificateAvailableAt.Equal(t0))
}
