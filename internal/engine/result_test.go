package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_MapSkipsFailures(t *testing.T) {
	double := func(v int) int { return v * 2 }

	assert.Equal(t, 4, Ok(2).Map(double).Value())

	failed := FailKind[int](KindTimeout, "slow").Map(double)
	assert.False(t, failed.IsOk())
	assert.Equal(t, KindTimeout, failed.Err().Kind)
}

func TestResult_AndThenChainsOnSuccessOnly(t *testing.T) {
	step := func(v int) Result[int] {
		if v > 0 {
			return Ok(v + 1)
		}
		return FailKind[int](KindNotFound, "gone")
	}

	assert.Equal(t, 2, Ok(1).AndThen(step).Value())
	assert.Equal(t, KindNotFound, Ok(0).AndThen(step).Err().Kind)

	calls := 0
	FailKind[int](KindNetwork, "down").AndThen(func(v int) Result[int] {
		calls++
		return Ok(v)
	})
	assert.Zero(t, calls, "AndThen must not run on a failure")
}

func TestResult_UnwrapOr(t *testing.T) {
	assert.Equal(t, 7, Ok(7).UnwrapOr(0))
	assert.Equal(t, 0, FailKind[int](KindRateLimited, "denied").UnwrapOr(0))
}

func TestErrorString(t *testing.T) {
	err := Errorf(KindNetwork, "dial %s refused", "twitch.tv")
	assert.Equal(t, "network_error: dial twitch.tv refused", err.Error())
}
