package workouts

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWorkoutNotFound          = errors.New("workout not found")
	ErrExerciseNotFound         = errors.New("exercise not found")
	ErrSetNotFound              = errors.New("set not found")
	ErrTemplateNotFound         = errors.New("template not found")
	ErrTemplateExerciseNotFound = errors.New("template exercise not found")

	ErrEmptyName = errors.New("name empty")
)

// Repo is the single storage abstraction for the workout store. Two
// interchangeable adapters implement it: PostgresRepo (networked server
// engine) and SQLiteRepo (local embedded engine). Nothing above this
// interface may branch on which backend is active.
type Repo interface {
	StartWorkout(ctx context.Context, workoutType string, date time.Time) (*Workout, error)
	StartWorkoutFromTemplate(ctx context.Context, templateID int, date time.Time) (*Workout, error)
	Workout(ctx context.Context, id int) (*Workout, error)
	WorkoutDetail(ctx context.Context, id int) (*WorkoutDetail, error)
	InProgress(ctx context.Context) (*Workout, error)
	ListCompleted(ctx context.Context, limit int) ([]WorkoutSummary, error)
	AddExercise(ctx context.Context, workoutID int, name string) (*Exercise, error)
	AddSet(ctx context.Context, exerciseID, reps int, weight float64) (*Set, error)
	DeleteSet(ctx context.Context, setID int) error
	DeleteExercise(ctx context.Context, exerciseID int) error
	UpdateRun(ctx context.Context, workoutID int, durationMinutes *int, distanceKM *float64) error
	FinishWorkout(ctx context.Context, workoutID int, notes string) error
	CancelWorkout(ctx context.Context, workoutID int) error
	DeleteWorkout(ctx context.Context, workoutID int) error

	CreateTemplate(ctx context.Context, name, workoutType string) (*Template, error)
	Template(ctx context.Context, id int) (*Template, error)
	TemplateDetail(ctx context.Context, id int) (*TemplateDetail, error)
	ListTemplates(ctx context.Context) ([]TemplateSummary, error)
	AddTemplateExercise(ctx context.Context, templateID int, name string, targetSets, targetReps int, targetWeight float64) (*TemplateExercise, error)
	DeleteTemplateExercise(ctx context.Context, id int) error
	DeleteTemplate(ctx context.Context, id int) error
}
