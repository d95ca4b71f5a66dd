package evaluate

import "math"

// DefaultDeviation is the ramp width used when a fuzzy function is given none.
const DefaultDeviation = 0.1

func fuzzyAnd(a, b float64) float64 { return math.Min(a, b) }

func fuzzyOr(a, b float64) float64 { return math.Max(a, b) }

func fuzzyNot(a float64) float64 { return 1 - a }

// LeftShoulder scores how well value reaches up to target: 1 at or above the
// target, 0 at or below target-deviation, linear in between.
func LeftShoulder(value, target, deviation float64) float64 {
	if deviation <= 0 {
		deviation = DefaultDeviation
	}
	switch {
	case value >= target:
		return 1
	case value <= target-deviation:
		return 0
	}
	return (value - (target - deviation)) / deviation
}

// RightShoulder scores how well value stays down to target: 1 at or below the
// target, 0 at or above target+deviation, linear in between.
func RightShoulder(value, target, deviation float64) float64 {
	if deviation <= 0 {
		deviation = DefaultDeviation
	}
	switch {
	case value <= target:
		return 1
	case value >= target+deviation:
		return 0
	}
	return (target + deviation - value) / deviation
}

// Triangle peaks at target and falls off linearly to 0 at target±deviation.
func Triangle(value, target, deviation float64) float64 {
	switch {
	case value < target:
		return LeftShoulder(value, target, deviation)
	case value > target:
		return RightShoulder(value, target, deviation)
	}
	return 1
}
