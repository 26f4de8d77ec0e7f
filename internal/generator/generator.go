package generator

import "math/rand"

// Default sampling bounds. Positions are symmetric around zero with the
// small positive extension on the target range; acceleration and velocity
// bounds are deliberately independent of the provisioned per-axis limits.
// That looseness is inherited from the data source being simulated, not a
// clamp waiting to be added.
const (
	defaultMinPosition     = -190.0
	defaultMaxPosition     = 190.0
	defaultTargetExtension = 1.0

	defaultMaxSampleAcceleration = 150.0
	defaultMaxSampleVelocity     = 80.0

	defaultMinToolOffset = 5.0
	defaultMaxToolOffset = 40.0
	defaultMaxFeedrate   = 20000.0

	defaultToolCapacity = 24
)

type generatorRules struct {
	minPosition, maxPosition float64
	targetExtension          float64

	maxSampleAcceleration float64
	maxSampleVelocity     float64

	minToolOffset, maxToolOffset float64
	maxFeedrate                  float64

	toolCapacity int
}

func defaultGeneratorRules() *generatorRules {
	return &generatorRules{
		minPosition:           defaultMinPosition,
		maxPosition:           defaultMaxPosition,
		targetExtension:       defaultTargetExtension,
		maxSampleAcceleration: defaultMaxSampleAcceleration,
		maxSampleVelocity:     defaultMaxSampleVelocity,
		minToolOffset:         defaultMinToolOffset,
		maxToolOffset:         defaultMaxToolOffset,
		maxFeedrate:           defaultMaxFeedrate,
		toolCapacity:          defaultToolCapacity,
	}
}

// Option adjusts the sampling bounds of a Generator.
type Option func(rules *generatorRules)

// WithPositionRange sets the symmetric actual-position range.
func WithPositionRange(min, max float64) Option {
	return func(rules *generatorRules) {
		if min > max {
			min, max = max, min
		}
		rules.minPosition = min
		rules.maxPosition = max
	}
}

// WithToolCapacity sets the number of tool slots per machine.
func WithToolCapacity(capacity int) Option {
	return func(rules *generatorRules) {
		if capacity > 0 {
			rules.toolCapacity = capacity
		}
	}
}

// WithKinematicBounds sets the upper sampling bounds for acceleration and
// velocity.
func WithKinematicBounds(maxAcceleration, maxVelocity float64) Option {
	return func(rules *generatorRules) {
		if maxAcceleration > 0 {
			rules.maxSampleAcceleration = maxAcceleration
		}
		if maxVelocity > 0 {
			rules.maxSampleVelocity = maxVelocity
		}
	}
}

// AxisSample is one synthetic kinematics reading for an axis.
type AxisSample struct {
	ActualPosition float64
	TargetPosition float64
	Homed          bool
	Acceleration   float64
	Velocity       float64
}

// ToolSample is one synthetic tool telemetry reading for a machine.
type ToolSample struct {
	ToolOffset float64
	Feedrate   float64
}

// Generator produces bounded random telemetry samples. Every sampling method
// is a pure draw with no shared mutable state, so a single Generator is safe
// to use from all stream goroutines at once.
type Generator struct {
	rules *generatorRules
}

// New creates a Generator with the given bound overrides.
func New(opts ...Option) *Generator {
	rules := defaultGeneratorRules()
	for _, opt := range opts {
		opt(rules)
	}
	return &Generator{rules: rules}
}

// ToolCapacity reports the configured tool slots per machine.
func (g *Generator) ToolCapacity() int {
	return g.rules.toolCapacity
}

// AxisSample draws one kinematics sample. The target range extends slightly
// above the actual range, so distance_to_go can be marginally positive even
// at the travel limit.
func (g *Generator) AxisSample() AxisSample {
	return AxisSample{
		ActualPosition: uniform(g.rules.minPosition, g.rules.maxPosition),
		TargetPosition: uniform(g.rules.minPosition, g.rules.maxPosition+g.rules.targetExtension),
		Homed:          rand.Intn(2) == 0,
		Acceleration:   uniform(0, g.rules.maxSampleAcceleration),
		Velocity:       uniform(0, g.rules.maxSampleVelocity),
	}
}

// ToolSample draws one tool telemetry sample.
func (g *Generator) ToolSample() ToolSample {
	return ToolSample{
		ToolOffset: uniform(g.rules.minToolOffset, g.rules.maxToolOffset),
		Feedrate:   uniform(0, g.rules.maxFeedrate),
	}
}

// ToolInUse draws a tool slot index in [1, capacity].
func (g *Generator) ToolInUse() int {
	return 1 + rand.Intn(g.rules.toolCapacity)
}

// uniform draws from [min, max). The top-level rand source is safe for
// concurrent use.
func uniform(min, max float64) float64 {
	return min + rand.Float64()*(max-min)
}
