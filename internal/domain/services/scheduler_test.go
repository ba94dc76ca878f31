package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr/internal/domain/entities"
	"github.com/bluewatersql/twinklr/internal/domain/values"
)

func repeatingTemplate(mode values.RepeatMode, remainder values.RemainderPolicy) *entities.Template {
	return &entities.Template{
		ID: "chase",
		Repeat: entities.RepeatContract{
			Repeatable: true,
			Mode:       mode,
			CycleBars:  2,
			Remainder:  remainder,
		},
		Steps: []entities.TemplateStep{
			{
				ID:       "sweep",
				Group:    "ALL",
				Timing:   entities.BaseTiming{StartBars: 0, DurationBars: 2},
				Geometry: entities.GeometrySpec{Pose: "HOME"},
			},
		},
	}
}

func Test_RepeatScheduler_Schedule_RejectsBadWindow(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatPingPong, values.RemainderTruncate)

	_, err := s.Schedule(tpl, 0, 500)
	assert.Error(t, err)

	_, err = s.Schedule(tpl, 1000, 0)
	assert.Error(t, err)
}

func Test_RepeatScheduler_Schedule_NonRepeatableTruncates(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatPingPong, values.RemainderTruncate)
	tpl.Repeat.Repeatable = false

	// Step is 2 bars = 1000ms; window cuts it in half.
	occs, err := s.Schedule(tpl, 500, 500)
	require.NoError(t, err)

	require.Len(t, occs, 1)
	assert.Equal(t, int64(0), occs[0].StartMs)
	assert.Equal(t, int64(500), occs[0].EndMs)
	assert.InDelta(t, 0.5, occs[0].Span, 1e-9)
	assert.False(t, occs[0].Loop)
}

func Test_RepeatScheduler_Schedule_PingPongWholeCycles(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatPingPong, values.RemainderTruncate)

	// cycle = 2 bars * 500ms = 1000ms; full ping-pong cycle = 2000ms.
	// Window 4000ms holds exactly two full cycles: F B F B.
	occs, err := s.Schedule(tpl, 4000, 500)
	require.NoError(t, err)

	require.Len(t, occs, 4)

	wantStarts := []int64{0, 1000, 2000, 3000}
	wantReversed := []bool{false, true, false, true}
	wantCycles := []int{0, 0, 1, 1}
	for i, occ := range occs {
		assert.Equal(t, wantStarts[i], occ.StartMs, "occurrence %d", i)
		assert.Equal(t, wantReversed[i], occ.Reversed, "occurrence %d", i)
		assert.Equal(t, wantCycles[i], occ.Cycle, "occurrence %d", i)
		assert.Equal(t, OccurrencePlay, occ.Kind, "occurrence %d", i)
		assert.True(t, occ.Loop, "occurrence %d", i)
		assert.InDelta(t, 1.0, occ.Span, 1e-9, "occurrence %d", i)
	}
}

func Test_RepeatScheduler_Schedule_PingPongTruncateRemainder(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatPingPong, values.RemainderTruncate)

	// 4500ms = 2 full cycles + 500ms: a half forward pass is appended.
	occs, err := s.Schedule(tpl, 4500, 500)
	require.NoError(t, err)

	require.Len(t, occs, 5)
	last := occs[4]
	assert.Equal(t, int64(4000), last.StartMs)
	assert.Equal(t, int64(4500), last.EndMs)
	assert.False(t, last.Reversed)
	assert.InDelta(t, 0.5, last.Span, 1e-9)
}

func Test_RepeatScheduler_Schedule_PingPongHoldRemainder(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatPingPong, values.RemainderHoldLastPose)

	occs, err := s.Schedule(tpl, 4500, 500)
	require.NoError(t, err)

	require.Len(t, occs, 5)
	last := occs[4]
	assert.Equal(t, OccurrenceHold, last.Kind)
	assert.Equal(t, int64(4000), last.StartMs)
	assert.Equal(t, int64(4500), last.EndMs)
	// The hold freezes the backward traversal's end state, which is the
	// loop's opening pose.
	assert.True(t, last.Reversed)
	assert.False(t, last.Loop)
}

func Test_RepeatScheduler_Schedule_PingPongFadeRemainder(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatPingPong, values.RemainderFadeOut)

	occs, err := s.Schedule(tpl, 2500, 500)
	require.NoError(t, err)

	last := occs[len(occs)-1]
	assert.Equal(t, OccurrenceFadeOut, last.Kind)
	assert.Equal(t, int64(2000), last.StartMs)
	assert.Equal(t, int64(2500), last.EndMs)
}

func Test_RepeatScheduler_Schedule_JoinerCycles(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatJoiner, values.RemainderTruncate)

	// JOINER cycles are cycleMs long, all forward.
	occs, err := s.Schedule(tpl, 3000, 500)
	require.NoError(t, err)

	require.Len(t, occs, 3)
	for i, occ := range occs {
		assert.Equal(t, int64(i)*1000, occ.StartMs, "occurrence %d", i)
		assert.False(t, occ.Reversed, "occurrence %d", i)
		assert.Equal(t, i, occ.Cycle, "occurrence %d", i)
	}
}

func Test_RepeatScheduler_Schedule_JoinerHoldRemainder(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatJoiner, values.RemainderHoldLastPose)

	occs, err := s.Schedule(tpl, 3500, 500)
	require.NoError(t, err)

	require.Len(t, occs, 4)
	last := occs[3]
	assert.Equal(t, OccurrenceHold, last.Kind)
	assert.False(t, last.Reversed)
	assert.Equal(t, int64(3000), last.StartMs)
	assert.Equal(t, int64(3500), last.EndMs)
}

func Test_RepeatScheduler_Schedule_BackwardPassMirrorsPlacement(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatPingPong, values.RemainderTruncate)
	// Step occupies the first bar of a 2-bar cycle.
	tpl.Steps[0].Timing = entities.BaseTiming{StartBars: 0, DurationBars: 1}

	occs, err := s.Schedule(tpl, 2000, 500)
	require.NoError(t, err)

	require.Len(t, occs, 2)
	// Forward: starts at cycle start. Backward: mirrored to the second
	// half of the backward pass.
	assert.Equal(t, int64(0), occs[0].StartMs)
	assert.Equal(t, int64(500), occs[0].EndMs)
	assert.Equal(t, int64(1500), occs[1].StartMs)
	assert.Equal(t, int64(2000), occs[1].EndMs)
	assert.True(t, occs[1].Reversed)
}

func Test_RepeatScheduler_Schedule_LoopStepPastCycleFails(t *testing.T) {
	t.Parallel()

	s := NewRepeatScheduler()
	tpl := repeatingTemplate(values.RepeatPingPong, values.RemainderTruncate)
	tpl.Steps[0].Timing.DurationBars = 3

	_, err := s.Schedule(tpl, 4000, 500)
	require.Error(t, err)

	var schemaErr *entities.SchemaViolationError
	assert.ErrorAs(t, err, &schemaErr)
}
