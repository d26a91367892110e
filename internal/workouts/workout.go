package workouts

import "time"

const (
	TypeStrength = "strength"
	TypeCircuit  = "circuit"
	TypeRun      = "run"
)

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

type Workout struct {
	ID              int        `json:"id"`
	Type            string     `json:"workoutType"`
	Status          string     `json:"status"`
	Date            time.Time  `json:"date"`
	Notes           string     `json:"notes"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	DistanceKM      *float64   `json:"distanceKm,omitempty"`
	TemplateID      *int       `json:"templateId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// IsRun tells whether the workout tracks duration/distance
// instead of exercises and sets.
func (w *Workout) IsRun() bool {
	return w.Type == TypeRun
}

type Exercise struct {
	ID        int       `json:"id"`
	WorkoutID int       `json:"workoutId"`
	Name      string    `json:"name"`
	OrderNum  int       `json:"orderNum"`
	CreatedAt time.Time `json:"createdAt"`

	// targets are copied from a template at creation time, never recomputed
	TargetSets   *int     `json:"targetSets,omitempty"`
	TargetReps   *int     `json:"targetReps,omitempty"`
	TargetWeight *float64 `json:"targetWeight,omitempty"`
}

type Set struct {
	ID         int       `json:"id"`
	ExerciseID int       `json:"exerciseId"`
	SetNumber  int       `json:"setNumber"`
	Reps       int       `json:"reps"`
	Weight     float64   `json:"weight"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WorkoutSummary is a workout annotated with child counts,
// used for the completed history list.
type WorkoutSummary struct {
	Workout
	ExerciseCount int `json:"exerciseCount"`
	SetCount      int `json:"setCount"`
}

type ExerciseWithSets struct {
	Exercise
	Sets []Set `json:"sets"`
}

type WorkoutDetail struct {
	Workout
	Exercises []ExerciseWithSets `json:"exercises"`
}
