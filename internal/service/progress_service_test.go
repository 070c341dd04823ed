package service

import (
	"certify_backend/internal/util"
	"certify_backend/pkg/database"
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{0, 4, 0},
		{3, 4, 75},
		{4, 4, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{5, 4, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeProgress(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}

func TestContentDone(t *testing.T) {
	assert.ErrorIs(t, ContentDone(nil, map[uint]bool{}), util.ErrSubTopicHasNoContent)
	assert.ErrorIs(t, ContentDone([]uint{1, 2}, map[uint]bool{1: true}), util.ErrSubTopicIncomplete)
	assert.NoError(t, ContentDone([]uint{1, 2}, map[uint]bool{1: true, 2: true}))
}

func TestLevelDone(t *testing.T) {
	assert.False(t, LevelDone(nil, map[uint]bool{}))
	assert.False(t, LevelDone([]uint{1, 2}, map[uint]bool{2: true}))
	assert.True(t, LevelDone([]uint{1, 2}, map[uint]bool{1: true, 2: true}))
}

func TestProgress_FullModuleWalkthrough(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	f.enroll(t, 1, m.Module.ID)
	ctx := context.Background()

	levels := m.Module.Levels
	f.completeSubTopic(t, 1, levels[0].SubTopics[0])
	f.completeSubTopic(t, 1, levels[0].SubTopics[1])
	state := f.completeSubTopic(t, 1, levels[1].SubTopics[0])

	assert.True(t, state.SubTopicCompleted)
	assert.False(t, state.LevelCompleted)
	assert.Equal(t, 75, state.ProgressPercentage)
	assert.Equal(t, 75, f.enrollment(t, 1, m.Module.ID).ProgressPercentage)

	state = f.completeSubTopic(t, 1, levels[1].SubTopics[1])
	assert.True(t, state.LevelCompleted)
	assert.Equal(t, 100, state.ProgressPercentage)

	progress, err := f.progress.GetEnrollmentProgress(ctx, 1, m.Module.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.ProgressPercentage)
	assert.Equal(t, 4, progress.TotalSubTopics)
	assert.ElementsMatch(t, m.SubTopicIDs(), progress.CompletedSubTopics)
}

func TestMarkContentComplete_PartialSubTopic(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	f.enroll(t, 1, m.Module.ID)

	st := m.Module.Levels[0].SubTopics[0]
	state, err := f.progress.MarkContentComplete(context.Background(), 1, st.Contents[0].ID)
	require.NoError(t, err)

	assert.Equal(t, st.Contents[0].ID, state.ContentID)
	assert.Equal(t, st.ID, state.SubTopicID)
	assert.False(t, state.SubTopicCompleted)
	assert.Equal(t, 0, state.ProgressPercentage)
}

func TestMarkContentComplete_Idempotent(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	f.enroll(t, 1, m.Module.ID)
	ctx := context.Background()

	st := m.Module.Levels[0].SubTopics[0]
	f.completeSubTopic(t, 1, st)

	state, err := f.progress.MarkContentComplete(ctx, 1, st.Contents[0].ID)
	require.NoError(t, err)
	assert.True(t, state.SubTopicCompleted)
	assert.Equal(t, 25, state.ProgressPercentage)

	ids, err := f.enrollments.CompletedSubTopicIDs(ctx, 1, m.Module.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{st.ID}, ids)
}

func TestMarkContentComplete_Errors(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, database.ModuleSeed{
		Title:  "drafts",
		Levels: []database.LevelSeed{{SubTopics: []database.SubTopicSeed{{Published: 1, Drafts: 1}}}},
	})
	ctx := context.Background()
	st := m.Module.Levels[0].SubTopics[0]

	_, err := f.progress.MarkContentComplete(ctx, 1, st.Contents[0].ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	f.enroll(t, 1, m.Module.ID)

	_, err = f.progress.MarkContentComplete(ctx, 1, 9999)
	assert.ErrorIs(t, err, util.ErrContentNotFound)

	// drafts do not count and cannot be completed
	_, err = f.progress.MarkContentComplete(ctx, 1, st.Contents[1].ID)
	assert.ErrorIs(t, err, util.ErrContentNotFound)

	state, err := f.progress.MarkContentComplete(ctx, 1, st.Contents[0].ID)
	require.NoError(t, err)
	assert.True(t, state.SubTopicCompleted)
	assert.Equal(t, 100, state.ProgressPercentage)
}

func TestMarkContentComplete_UnpaidEnrollment(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	require.NoError(t, f.enrollments.CreateIfAbsent(context.Background(), 1, m.Module.ID))

	_, err := f.progress.MarkContentComplete(context.Background(), 1, m.Module.Levels[0].SubTopics[0].Contents[0].ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}

func TestMarkSubTopicComplete(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	ctx := context.Background()
	st := m.Module.Levels[0].SubTopics[0]

	_, err := f.progress.MarkSubTopicComplete(ctx, 1, st.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	f.enroll(t, 1, m.Module.ID)

	_, err = f.progress.MarkSubTopicComplete(ctx, 1, 9999)
	assert.ErrorIs(t, err, util.ErrSubTopicNotFound)

	_, err = f.progress.MarkSubTopicComplete(ctx, 1, st.ID)
	assert.ErrorIs(t, err, util.ErrSubTopicIncomplete)

	// content recorded without going through the aggregator
	for _, c := range st.Contents {
		require.NoError(t, f.completions.MarkComplete(ctx, 1, c.ID, baseTime))
	}
	state, err := f.progress.MarkSubTopicComplete(ctx, 1, st.ID)
	require.NoError(t, err)
	assert.True(t, state.SubTopicCompleted)
	assert.Equal(t, 25, state.ProgressPercentage)

	state, err = f.progress.MarkSubTopicComplete(ctx, 1, st.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, state.ProgressPercentage)
}

func TestZeroContentSubTopicIsNeverComplete(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, database.ModuleSeed{
		Title: "hollow",
		Levels: []database.LevelSeed{{SubTopics: []database.SubTopicSeed{
			{Published: 1},
			{Drafts: 2},
		}}},
	})
	f.enroll(t, 1, m.Module.ID)
	ctx := context.Background()
	level := m.Module.Levels[0]

	state := f.completeSubTopic(t, 1, level.SubTopics[0])
	assert.Equal(t, 50, state.ProgressPercentage)
	assert.False(t, state.LevelCompleted)

	_, err := f.progress.MarkSubTopicComplete(ctx, 1, level.SubTopics[1].ID)
	assert.ErrorIs(t, err, util.ErrSubTopicHasNoContent)
	assert.Equal(t, 50, f.enrollment(t, 1, m.Module.ID).ProgressPercentage)
}

func TestRecomputeProgress_IgnoresForeignSubTopics(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	other := f.seed(t, twoByTwo())
	f.enroll(t, 1, m.Module.ID)
	ctx := context.Background()

	// a stray row pointing at another module's subtopic must not count
	require.NoError(t, f.enrollments.AddCompletedSubTopic(ctx, 1, m.Module.ID, other.Module.Levels[0].SubTopics[0].ID, baseTime))
	require.NoError(t, f.enrollments.AddCompletedSubTopic(ctx, 1, m.Module.ID, m.Module.Levels[0].SubTopics[0].ID, baseTime))

	pct, err := f.progress.RecomputeProgress(ctx, 1, m.Module.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, pct)
}

func TestRecomputeProgress_NoEnrollment(t *testing.T) {
	f := newFixture(t)
	_, err := f.progress.RecomputeProgress(context.Background(), 1, 1)
	assert.ErrorIs(t, err, util.ErrEnrollmentNotFound)
}

// Random completion orders keep the cached value equal to the formula and
// never shrink the completed set.
func TestProgressFormulaHoldsForRandomSequences(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, database.ModuleSeed{
		Title: "random",
		Levels: []database.LevelSeed{
			{SubTopics: []database.SubTopicSeed{{Published: 2}, {Published: 1}, {Published: 3}}},
			{SubTopics: []database.SubTopicSeed{{Published: 1}, {Published: 2, Drafts: 1}}},
			{SubTopics: []database.SubTopicSeed{{Published: 1}, {Published: 1}}},
		},
	})
	ctx := context.Background()
	total := len(m.SubTopicIDs())

	var contentIDs []uint
	for _, l := range m.Module.Levels {
		for _, st := range l.SubTopics {
			for _, c := range st.Contents {
				if c.IsPublished {
					contentIDs = append(contentIDs, c.ID)
				}
			}
		}
	}

	rng := rand.New(rand.NewSource(7))
	for userID := uint(1); userID <= 5; userID++ {
		f.enroll(t, userID, m.Module.ID)
		seq := append([]uint(nil), contentIDs...)
		rng.Shuffle(len(seq), func(i, j int) { seq[i], seq[j] = seq[j], seq[i] })
		// revisit some content to exercise the no-op path
		seq = append(seq, seq[:3]...)

		prev := 0
		for _, id := range seq {
			_, err := f.progress.MarkContentComplete(ctx, userID, id)
			require.NoError(t, err)

			done, err := f.enrollments.CompletedSubTopicIDs(ctx, userID, m.Module.ID)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(done), prev)
			prev = len(done)

			e := f.enrollment(t, userID, m.Module.ID)
			require.Equal(t, ComputeProgress(len(done), total), e.ProgressPercentage)
		}
		assert.Equal(t, 100, f.enrollment(t, userID, m.Module.ID).ProgressPercentage)
	}
}

type mapCache struct {
	data map[uint][]uint
	hits int
}

func (c *mapCache) ModuleSubTopics(_ context.Context, moduleID uint) ([]uint, bool) {
	ids, ok := c.data[moduleID]
	if ok {
		c.hits++
	}
	return ids, ok
}

func (c *mapCache) SetModuleSubTopics(_ context.Context, moduleID uint, ids []uint) {
	c.data[moduleID] = ids
}

func TestRecomputeProgress_UsesStructureCache(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	f.enroll(t, 1, m.Module.ID)
	cache := &mapCache{data: map[uint][]uint{}}
	f.progress.Cache = cache

	f.completeSubTopic(t, 1, m.Module.Levels[0].SubTopics[0])

	assert.ElementsMatch(t, m.SubTopicIDs(), cache.data[m.Module.ID])
	assert.Greater(t, cache.hits, 0)
}

func TestGetEnrollmentProgress_NotEnrolled(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())

	_, err := f.progress.GetEnrollmentProgress(context.Background(), 1, m.Module.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	_, err = f.progress.GetEnrollmentProgress(context.Background(), 0, m.Module.ID)
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}
