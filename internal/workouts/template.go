package workouts

import "time"

// Template is a reusable, named blueprint of exercises with target
// sets/reps/weight, used to pre-populate a new workout.
type Template struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"workoutType"`
	CreatedAt time.Time `json:"createdAt"`
}

type TemplateExercise struct {
	ID           int     `json:"id"`
	TemplateID   int     `json:"templateId"`
	Name         string  `json:"name"`
	OrderNum     int     `json:"orderNum"`
	TargetSets   int     `json:"targetSets"`
	TargetReps   int     `json:"targetReps"`
	TargetWeight float64 `json:"targetWeight"`
}

const (
	DefaultTargetSets   = 3
	DefaultTargetReps   = 10
	DefaultTargetWeight = 0
)

type TemplateSummary struct {
	Template
	ExerciseCount int `json:"exerciseCount"`
}

type TemplateDetail struct {
	Template
	Exercises []TemplateExercise `json:"exercises"`
}
