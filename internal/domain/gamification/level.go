package gamification

// Level represents a user's level, derived deterministically from Points.
// Levels start at 1; the invariant `level == LevelFor(points)` must hold
// after every point award.
type Level int

// IsValid checks that the level is at least 1.
func (l Level) IsValid() bool {
	return l >= 1
}

// LevelThreshold maps a level to the minimum cumulative points required.
type LevelThreshold struct {
	Level     Level
	MinPoints Points
}

// LevelThresholds is the static threshold table, ascending by MinPoints.
// The level for a point total is the highest entry not exceeding it.
var LevelThresholds = []LevelThreshold{
	{Level: 1, MinPoints: 0},
	{Level: 2, MinPoints: 100},
	{Level: 3, MinPoints: 300},
	{Level: 4, MinPoints: 600},
	{Level: 5, MinPoints: 1000},
	{Level: 6, MinPoints: 1500},
	{Level: 7, MinPoints: 2100},
	{Level: 8, MinPoints: 2800},
	{Level: 9, MinPoints: 3600},
	{Level: 10, MinPoints: 5000},
}

// MaxLevel returns the highest attainable level.
func MaxLevel() Level {
	return LevelThresholds[len(LevelThresholds)-1].Level
}

// LevelFor returns the level for a cumulative point total.
// It is a pure, total function: any total below the second threshold yields
// level 1, including negative inputs from corrupted state.
func LevelFor(points Points) Level {
	for i := len(LevelThresholds) - 1; i >= 0; i-- {
		if points >= LevelThresholds[i].MinPoints {
			return LevelThresholds[i].Level
		}
	}
	return 1
}

// NextThreshold returns the minimum points of the next level above the given
// total. ok is false when the total already sits at the top level.
func NextThreshold(points Points) (next Points, ok bool) {
	for _, t := range LevelThresholds {
		if t.MinPoints > points {
			return t.MinPoints, true
		}
	}
	return 0, false
}

// PointsToNextLevel returns how many points remain until the next level,
// clamped to zero for top-level users.
func PointsToNextLevel(points Points) Points {
	next, ok := NextThreshold(points)
	if !ok {
		return 0
	}
	remaining := next - points
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LevelProgress returns the progress through the current level as a
// percentage in [0, 100]. Top-level users report 100.
func LevelProgress(points Points) int {
	level := LevelFor(points)
	next, ok := NextThreshold(points)
	if !ok {
		return 100
	}

	var current Points
	for _, t := range LevelThresholds {
		if t.Level == level {
			current = t.MinPoints
			break
		}
	}

	span := next - current
	if span <= 0 {
		return 100
	}

	progress := int(float64(points-current) / float64(span) * 100)
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
