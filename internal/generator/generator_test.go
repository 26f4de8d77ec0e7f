package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxisSampleBounds(t *testing.T) {
	gen := New()

	sawHomed := false
	sawUnhomed := false
	for i := 0; i < 1000; i++ {
		sample := gen.AxisSample()

		assert.GreaterOrEqual(t, sample.ActualPosition, defaultMinPosition)
		assert.Less(t, sample.ActualPosition, defaultMaxPosition)
		assert.GreaterOrEqual(t, sample.TargetPosition, defaultMinPosition)
		assert.Less(t, sample.TargetPosition, defaultMaxPosition+defaultTargetExtension)
		assert.GreaterOrEqual(t, sample.Acceleration, 0.0)
		assert.Less(t, sample.Acceleration, defaultMaxSampleAcceleration)
		assert.GreaterOrEqual(t, sample.Velocity, 0.0)
		assert.Less(t, sample.Velocity, defaultMaxSampleVelocity)

		if sample.Homed {
			sawHomed = true
		} else {
			sawUnhomed = true
		}
	}

	assert.True(t, sawHomed, "expected at least one homed sample in 1000 draws")
	assert.True(t, sawUnhomed, "expected at least one unhomed sample in 1000 draws")
}

func TestToolSampleBounds(t *testing.T) {
	gen := New()

	for i := 0; i < 1000; i++ {
		sample := gen.ToolSample()
		assert.GreaterOrEqual(t, sample.ToolOffset, defaultMinToolOffset)
		assert.Less(t, sample.ToolOffset, defaultMaxToolOffset)
		assert.GreaterOrEqual(t, sample.Feedrate, 0.0)
		assert.Less(t, sample.Feedrate, defaultMaxFeedrate)
	}
}

func TestToolInUseRange(t *testing.T) {
	gen := New(WithToolCapacity(6))

	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		slot := gen.ToolInUse()
		assert.GreaterOrEqual(t, slot, 1)
		assert.LessOrEqual(t, slot, 6)
		seen[slot] = true
	}

	assert.Len(t, seen, 6, "expected every tool slot to appear in 1000 draws")
}

func TestOptions(t *testing.T) {
	gen := New(
		WithPositionRange(50, -50), // swapped bounds are normalized
		WithKinematicBounds(10, 5),
	)

	for i := 0; i < 200; i++ {
		sample := gen.AxisSample()
		assert.GreaterOrEqual(t, sample.ActualPosition, -50.0)
		assert.Less(t, sample.ActualPosition, 50.0+defaultTargetExtension)
		assert.Less(t, sample.Acceleration, 10.0)
		assert.Less(t, sample.Velocity, 5.0)
	}

	assert.Equal(t, defaultToolCapacity, gen.ToolCapacity())
	assert.Equal(t, 6, New(WithToolCapacity(6)).ToolCapacity())
}
