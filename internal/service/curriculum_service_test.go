package service

import (
	"certify_backend/internal/util"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModuleOutline_LockFlags(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	f.enroll(t, 1, m.Module.ID)
	ctx := context.Background()

	out, err := f.curriculum.GetModuleOutline(ctx, 1, m.Module.ID)
	require.NoError(t, err)
	assert.Equal(t, "Certified Practitioner", out.Title)
	require.Len(t, out.Levels, 2)
	require.Len(t, out.Levels[0].SubTopics, 2)
	assert.True(t, out.Levels[0].SubTopics[0].Test.Locked)
	assert.True(t, out.Levels[0].Test.Locked)
	require.NotNil(t, out.Test)
	assert.True(t, out.Test.Locked)

	f.completeSubTopic(t, 1, m.Module.Levels[0].SubTopics[0])
	f.completeSubTopic(t, 1, m.Module.Levels[0].SubTopics[1])
	_, err = f.submissions.SubmitTest(ctx, subTopicRequest(m, 1, 0, 0, 6))
	require.NoError(t, err)

	out, err = f.curriculum.GetModuleOutline(ctx, 1, m.Module.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, out.ProgressPercentage)
	first := out.Levels[0]
	assert.True(t, first.Completed)
	assert.True(t, first.SubTopics[0].Completed)
	assert.True(t, first.SubTopics[0].Contents[0].Completed)
	assert.False(t, first.SubTopics[0].Test.Locked)
	require.NotNil(t, first.SubTopics[0].Test.LastScore)
	assert.Equal(t, 60, *first.SubTopics[0].Test.LastScore)
	assert.False(t, first.SubTopics[0].Test.Passed)
	assert.False(t, first.Test.Locked)
	assert.False(t, out.Levels[1].Completed)
	assert.True(t, out.Levels[1].Test.Locked)
	assert.True(t, out.Test.Locked)
}

func TestGetModuleOutline_ExamDate(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	f.enroll(t, 1, m.Module.ID)
	f.completeAll(t, 1, m)
	ctx := context.Background()

	date := baseTime.Add(time.Hour)
	_, err := f.enrollSvc.ScheduleExam(ctx, 1, m.Module.ID, &date)
	require.NoError(t, err)

	out, err := f.curriculum.GetModuleOutline(ctx, 1, m.Module.ID)
	require.NoError(t, err)
	assert.True(t, out.Test.Locked)
	require.NotNil(t, out.Test.AvailableFrom)
	assert.True(t, out.Test.AvailableFrom.Equal(date))

	f.clock.Advance(time.Hour)
	out, err = f.curriculum.GetModuleOutline(ctx, 1, m.Module.ID)
	require.NoError(t, err)
	assert.False(t, out.Test.Locked)
}

func TestGetModuleOutline_HidesDraftsAndInactiveTests(t *testing.T) {
	f := newFixture(t)
	seed := twoByTwo()
	seed.Levels[0].SubTopics[0].Drafts = 3
	seed.Levels[0].SubTopics[1].Test.Inactive = true
	m := f.seed(t, seed)
	f.enroll(t, 1, m.Module.ID)

	out, err := f.curriculum.GetModuleOutline(context.Background(), 1, m.Module.ID)
	require.NoError(t, err)
	assert.Len(t, out.Levels[0].SubTopics[0].Contents, 2)
	assert.Nil(t, out.Levels[0].SubTopics[1].Test)
}

func TestGetModuleOutline_Errors(t *testing.T) {
	f := newFixture(t)
	m := f.seed(t, twoByTwo())
	ctx := context.Background()

	_, err := f.curriculum.GetModuleOutline(ctx, 1, 9999)
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
	_, err = f.curriculum.GetModuleOutline(ctx, 1, m.Module.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}
