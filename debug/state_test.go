// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package debug_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-a2a/llmkernel/debug"
	"github.com/go-a2a/llmkernel/types"
)

func TestHasBreakpointFastPath(t *testing.T) {
	s := debug.NewState()
	assert.False(t, s.HasBreakpoint("main.lua", 10))

	s.SetBreakpoint("main.lua", 10, "")
	assert.True(t, s.HasBreakpoint("main.lua", 10))
	assert.False(t, s.HasBreakpoint("main.lua", 11))
}

func TestShouldPauseUnconditionalAlwaysHits(t *testing.T) {
	s := debug.NewState()
	s.SetBreakpoint("main.lua", 10, "")

	hit, err := s.ShouldPause("main.lua", 10, nil, debug.Frame{})
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestShouldPauseConditionalEvaluatesOnce(t *testing.T) {
	s := debug.NewState()
	s.SetBreakpoint("main.lua", 10, "x > 5")

	calls := 0
	eval := func(bp *debug.Breakpoint, frame debug.Frame) (bool, error) {
		calls++
		return true, nil
	}

	hit, err := s.ShouldPause("main.lua", 10, eval, debug.Frame{})
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = s.ShouldPause("main.lua", 10, eval, debug.Frame{})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls, "cached condition result must not re-evaluate within the same generation")
}

func TestInvalidateConditionsForcesReevaluation(t *testing.T) {
	s := debug.NewState()
	s.SetBreakpoint("main.lua", 10, "x > 5")

	calls := 0
	eval := func(bp *debug.Breakpoint, frame debug.Frame) (bool, error) {
		calls++
		return calls == 1, nil
	}

	hit, _ := s.ShouldPause("main.lua", 10, eval, debug.Frame{})
	assert.True(t, hit)

	s.InvalidateConditions()

	hit, _ = s.ShouldPause("main.lua", 10, eval, debug.Frame{})
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestReplacingConditionDropsCache(t *testing.T) {
	s := debug.NewState()
	s.SetBreakpoint("main.lua", 10, "x > 5")

	calls := 0
	eval := func(bp *debug.Breakpoint, frame debug.Frame) (bool, error) {
		calls++
		return true, nil
	}
	s.ShouldPause("main.lua", 10, eval, debug.Frame{})
	s.SetBreakpoint("main.lua", 10, "x > 10")
	s.ShouldPause("main.lua", 10, eval, debug.Frame{})

	assert.Equal(t, 2, calls, "changing the condition must not reuse the old cached result")
}

func TestRemoveBreakpointClearsFastAndSlowPath(t *testing.T) {
	s := debug.NewState()
	s.SetBreakpoint("main.lua", 10, "x > 5")
	s.RemoveBreakpoint("main.lua", 10)

	assert.False(t, s.HasBreakpoint("main.lua", 10))
	hit, err := s.ShouldPause("main.lua", 10, nil, debug.Frame{})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestShouldPausePropagatesEvaluatorError(t *testing.T) {
	s := debug.NewState()
	s.SetBreakpoint("main.lua", 10, "bad syntax")

	wantErr := errors.New("boom")
	_, err := s.ShouldPause("main.lua", 10, func(bp *debug.Breakpoint, frame debug.Frame) (bool, error) {
		return false, wantErr
	}, debug.Frame{})
	assert.ErrorIs(t, err, wantErr)
}

func TestEvaluateWatchesCachesUntilInvalidated(t *testing.T) {
	s := debug.NewState()
	s.AddWatch("w1", "x + y")

	calls := 0
	eval := func(expr string, frame debug.Frame) (types.Value, error) {
		calls++
		return types.Number(float64(calls)), nil
	}

	results := s.EvaluateWatches(eval, debug.Frame{})
	v, _ := results["w1"].Value.AsNumber()
	assert.Equal(t, float64(1), v)

	results = s.EvaluateWatches(eval, debug.Frame{})
	v, _ = results["w1"].Value.AsNumber()
	assert.Equal(t, float64(1), v)
	assert.Equal(t, 1, calls)

	s.InvalidateConditions()
	results = s.EvaluateWatches(eval, debug.Frame{})
	v, _ = results["w1"].Value.AsNumber()
	assert.Equal(t, float64(2), v)
}

func TestRemoveWatchDropsCachedResult(t *testing.T) {
	s := debug.NewState()
	s.AddWatch("w1", "x")
	s.EvaluateWatches(func(expr string, frame debug.Frame) (types.Value, error) {
		return types.String("v"), nil
	}, debug.Frame{})

	s.RemoveWatch("w1")
	assert.Empty(t, s.Watches())
}

func TestStepModeSaveAndRestore(t *testing.T) {
	s := debug.NewState()
	s.SetStepMode(debug.StepOver, 3)
	assert.Equal(t, debug.StepOver, s.StepMode())
	assert.Equal(t, 3, s.StepBaseline())

	s.SetStepMode(debug.StepInto, 4)
	assert.Equal(t, debug.StepInto, s.StepMode())

	s.RestorePreStepMode()
	assert.Equal(t, debug.StepOver, s.StepMode())
}

func TestFrameIndexAndVariableCache(t *testing.T) {
	s := debug.NewState()
	s.SetFrameIndex(2)
	assert.Equal(t, 2, s.FrameIndex())

	vars := map[string]types.Value{"x": types.Number(1)}
	s.SetVariables(vars)
	assert.Equal(t, vars, s.Variables())
}
