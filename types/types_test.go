// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-a2a/llmkernel/types"
)

func TestIDDeterministic(t *testing.T) {
	ns := types.RootNamespace
	a := types.NewDeterministicID(ns, "tool.echo")
	b := types.NewDeterministicID(ns, "tool.echo")
	c := types.NewDeterministicID(ns, "tool.other")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.False(t, a.IsNil())
	assert.True(t, types.Nil.IsNil())
}

func TestIDParseRoundTrip(t *testing.T) {
	id := types.NewID()
	parsed, err := types.ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestScopePrefixIsolation(t *testing.T) {
	tenantA := types.Tenant("a")
	tenantB := types.Tenant("b")

	key := tenantA.Prefix() + "counter"
	assert.True(t, tenantA.Contains(key))
	assert.False(t, tenantB.Contains(key))
	assert.True(t, types.Global().Contains("global:counter"))
}

func TestClassOfInference(t *testing.T) {
	assert.Equal(t, types.Sensitive, types.ClassOf("secret:api-key"))
	assert.Equal(t, types.Sensitive, types.ClassOf("credential:db"))
	assert.Equal(t, types.External, types.ClassOf("external:webhook"))
	assert.Equal(t, types.Trusted, types.ClassOf("trusted:config"))
	assert.Equal(t, types.Ephemeral, types.ClassOf("temp:scratch"))
	assert.Equal(t, types.Standard, types.ClassOf("user:name"))
}

func TestClassPipelineFlags(t *testing.T) {
	assert.False(t, types.Ephemeral.Persists())
	assert.False(t, types.Ephemeral.RunsValidation())
	assert.True(t, types.Standard.RunsValidation())
	assert.True(t, types.Sensitive.RunsRedaction())
	assert.False(t, types.Standard.RunsRedaction())
	assert.False(t, types.Trusted.RunsValidation())
	assert.True(t, types.Trusted.Persists())
}

func TestSessionTransitions(t *testing.T) {
	assert.True(t, types.SessionPending.CanTransitionTo(types.SessionActive))
	assert.True(t, types.SessionActive.CanTransitionTo(types.SessionSuspended))
	assert.True(t, types.SessionSuspended.CanTransitionTo(types.SessionActive))
	assert.True(t, types.SessionActive.CanTransitionTo(types.SessionCompleted))
	assert.False(t, types.SessionCompleted.CanTransitionTo(types.SessionActive))
	assert.False(t, types.SessionExpired.CanTransitionTo(types.SessionActive))
	assert.False(t, types.SessionPending.CanTransitionTo(types.SessionSuspended))
}

func TestPriorityOrderingAndBuckets(t *testing.T) {
	assert.True(t, types.PriorityHighest.IsHigherThan(types.PriorityHigh))
	assert.True(t, types.PriorityHigh.IsHigherThan(types.PriorityNormal))
	assert.True(t, types.PriorityNormal.IsHigherThan(types.PriorityLow))
	assert.True(t, types.PriorityLow.IsHigherThan(types.PriorityLowest))
	assert.True(t, types.PriorityLowest.IsLowerThan(types.PriorityLow))

	assert.Equal(t, types.BucketCritical, types.BucketOf(types.PriorityHighest))
	assert.Equal(t, types.BucketHigh, types.BucketOf(types.PriorityHigh))
	assert.Equal(t, types.BucketNormal, types.BucketOf(types.PriorityNormal))
	assert.Equal(t, types.BucketLow, types.BucketOf(types.PriorityLow))
	assert.Equal(t, types.BucketLowest, types.BucketOf(types.PriorityLowest))
}

func TestPriorityBuilder(t *testing.T) {
	base := types.PriorityNormal

	before := base.Builder().Before(10)
	assert.Equal(t, types.Priority(int32(types.PriorityNormal)-10), before)

	after := base.Builder().After(10)
	assert.Equal(t, types.Priority(int32(types.PriorityNormal)+10), after)

	offset := base.Builder().Offset(-5)
	assert.Equal(t, types.Priority(int32(types.PriorityNormal)-5), offset)
}

func TestPriorityDistance(t *testing.T) {
	p1 := types.Priority(0)
	p2 := types.Priority(100)

	assert.EqualValues(t, 100, p1.DistanceFrom(p2))
	assert.EqualValues(t, 100, p2.DistanceFrom(p1))

	p3 := types.Priority(-50)
	assert.EqualValues(t, 50, p1.DistanceFrom(p3))
}

func TestAggregateHookResultsCancelShortCircuits(t *testing.T) {
	results := []types.HookResult{
		types.ContinueResult(),
		types.ModifiedResult(types.String("a")),
		types.CancelResult("blocked"),
		types.ModifiedResult(types.String("never seen")),
	}

	got := types.AggregateHookResults(results)
	assert.Equal(t, types.Cancel, got.Kind)
	assert.Equal(t, "blocked", got.CancelMsg)
}

func TestAggregateHookResultsLastModifiedWins(t *testing.T) {
	results := []types.HookResult{
		types.ContinueResult(),
		types.ModifiedResult(types.String("first")),
		types.SkipResult(),
		types.ModifiedResult(types.String("second")),
	}

	got := types.AggregateHookResults(results)
	require.Equal(t, types.Modified, got.Kind)
	s, ok := got.Payload.AsString()
	require.True(t, ok)
	assert.Equal(t, "second", s)
}

func TestAggregateHookResultsAllContinueOrSkip(t *testing.T) {
	results := []types.HookResult{types.ContinueResult(), types.SkipResult()}
	got := types.AggregateHookResults(results)
	assert.Equal(t, types.Continue, got.Kind)
}

func TestValueJSONRoundTrip(t *testing.T) {
	original := types.Object(map[string]types.Value{
		"name":    types.String("kernel"),
		"count":   types.Number(3),
		"active":  types.Bool(true),
		"tags":    types.Array(types.String("a"), types.String("b")),
		"missing": types.Null(),
	})

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded types.Value
	require.NoError(t, json.Unmarshal(data, &decoded))

	obj, ok := decoded.AsObject()
	require.True(t, ok)

	name, ok := obj["name"].AsString()
	require.True(t, ok)
	assert.Equal(t, "kernel", name)

	count, ok := obj["count"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, float64(3), count)

	tags, ok := obj["tags"].AsArray()
	require.True(t, ok)
	assert.Len(t, tags, 2)
}

func TestIsArrayShaped(t *testing.T) {
	arrayLike := map[string]types.Value{"1": types.String("a"), "2": types.String("b")}
	assert.True(t, types.IsArrayShaped(arrayLike))

	dictLike := map[string]types.Value{"name": types.String("a")}
	assert.False(t, types.IsArrayShaped(dictLike))

	assert.False(t, types.IsArrayShaped(map[string]types.Value{}))
}

func TestArtifactIDString(t *testing.T) {
	id := types.ArtifactID{SessionID: types.NewID(), ContentHash: "deadbeef", Sequence: 2}
	assert.Contains(t, id.String(), "deadbeef")
	assert.Contains(t, id.String(), "/2")
}

func TestArtifactHasTag(t *testing.T) {
	a := &types.Artifact{Tags: []string{"report", "final"}}
	assert.True(t, a.HasTag("final"))
	assert.False(t, a.HasTag("draft"))
}
