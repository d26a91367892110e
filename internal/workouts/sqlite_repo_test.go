package workouts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dstanisic/fitlog/pkg"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testSQLiteRepoSetup(t *testing.T) *SQLiteRepo {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	_, err = sqlDB.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, sqlDB.Close())
	})

	repo := NewSQLiteRepo(sqlDB)
	require.NoError(t, repo.InitSchema(context.Background()))
	return repo
}

func TestSQLiteRepo_StartWorkout(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w, err := repo.StartWorkout(ctx, TypeStrength, date)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.True(t, w.ID > 0)
	assert.Equal(t, StatusInProgress, w.Status)
	assert.Nil(t, w.CompletedAt)

	gotten, err := repo.Workout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, gotten.ID)
	assert.Equal(t, TypeStrength, gotten.Type)
	assert.Equal(t, StatusInProgress, gotten.Status)
	assert.True(t, date.Equal(gotten.Date))
	assert.Nil(t, gotten.DurationMinutes)
	assert.Nil(t, gotten.DistanceKM)
	assert.Nil(t, gotten.TemplateID)

	inProgress, err := repo.InProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, w.ID, inProgress.ID)

	_, err = repo.Workout(ctx, w.ID+100)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestSQLiteRepo_InProgress_NoneFound(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	_, err := repo.InProgress(ctx)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestSQLiteRepo_ExerciseNumbering(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	w, err := repo.StartWorkout(ctx, TypeStrength, time.Now())
	require.NoError(t, err)

	var exercises []*Exercise
	for i := 1; i <= 3; i++ {
		e, err := repo.AddExercise(ctx, w.ID, gofakeit.Noun())
		require.NoError(t, err)
		assert.Equal(t, i, e.OrderNum)
		exercises = append(exercises, e)
	}

	// deleted order numbers are never reused
	require.NoError(t, repo.DeleteExercise(ctx, exercises[1].ID))
	e4, err := repo.AddExercise(ctx, w.ID, gofakeit.Noun())
	require.NoError(t, err)
	assert.Equal(t, 4, e4.OrderNum)

	_, err = repo.AddExercise(ctx, w.ID, "")
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = repo.AddExercise(ctx, w.ID, "  \t ")
	assert.ErrorIs(t, err, ErrEmptyName)

	// surrounding whitespace never reaches storage
	trimmed, err := repo.AddExercise(ctx, w.ID, "  Deadlift ")
	require.NoError(t, err)
	assert.Equal(t, "Deadlift", trimmed.Name)
}

func TestSQLiteRepo_SetNumbering(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	w, err := repo.StartWorkout(ctx, TypeStrength, time.Now())
	require.NoError(t, err)
	e, err := repo.AddExercise(ctx, w.ID, "Deadlift")
	require.NoError(t, err)

	var sets []*Set
	for i := 1; i <= 3; i++ {
		s, err := repo.AddSet(ctx, e.ID, 5, 100)
		require.NoError(t, err)
		assert.Equal(t, i, s.SetNumber)
		sets = append(sets, s)
	}

	require.NoError(t, repo.DeleteSet(ctx, sets[2].ID))
	s4, err := repo.AddSet(ctx, e.ID, 5, 110)
	require.NoError(t, err)
	assert.Equal(t, 3, s4.SetNumber)

	require.NoError(t, repo.DeleteSet(ctx, sets[0].ID))
	s5, err := repo.AddSet(ctx, e.ID, 5, 120)
	require.NoError(t, err)
	assert.Equal(t, 4, s5.SetNumber)

	assert.ErrorIs(t, repo.DeleteSet(ctx, 12345), ErrSetNotFound)
}

func TestSQLiteRepo_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	w, err := repo.StartWorkout(ctx, TypeStrength, time.Now())
	require.NoError(t, err)
	e, err := repo.AddExercise(ctx, w.ID, "Bench")
	require.NoError(t, err)
	_, err = repo.AddSet(ctx, e.ID, 5, 100)
	require.NoError(t, err)

	detail, err := repo.WorkoutDetail(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, detail.Exercises, 1)
	assert.Equal(t, "Bench", detail.Exercises[0].Name)
	require.Len(t, detail.Exercises[0].Sets, 1)
	set := detail.Exercises[0].Sets[0]
	assert.Equal(t, 1, set.SetNumber)
	assert.Equal(t, 5, set.Reps)
	assert.Equal(t, 100.0, set.Weight)
}

func TestSQLiteRepo_StrengthWorkoutScenario(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w, err := repo.StartWorkout(ctx, TypeStrength, date)
	require.NoError(t, err)

	e, err := repo.AddExercise(ctx, w.ID, "Squat")
	require.NoError(t, err)
	_, err = repo.AddSet(ctx, e.ID, 5, 135.0)
	require.NoError(t, err)
	_, err = repo.AddSet(ctx, e.ID, 5, 145.0)
	require.NoError(t, err)

	require.NoError(t, repo.FinishWorkout(ctx, w.ID, "good session"))

	detail, err := repo.WorkoutDetail(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, detail.Status)
	assert.Equal(t, "good session", detail.Notes)
	require.NotNil(t, detail.CompletedAt)

	require.Len(t, detail.Exercises, 1)
	assert.Equal(t, "Squat", detail.Exercises[0].Name)
	require.Len(t, detail.Exercises[0].Sets, 2)
	assert.Equal(t, 1, detail.Exercises[0].Sets[0].SetNumber)
	assert.Equal(t, 135.0, detail.Exercises[0].Sets[0].Weight)
	assert.Equal(t, 2, detail.Exercises[0].Sets[1].SetNumber)
	assert.Equal(t, 145.0, detail.Exercises[0].Sets[1].Weight)
}

func TestSQLiteRepo_FinishWorkout_DoubleFinish(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	w, err := repo.StartWorkout(ctx, TypeCircuit, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.FinishWorkout(ctx, w.ID, "first"))
	first, err := repo.Workout(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	// second finish overwrites notes and timestamp, status stays completed
	require.NoError(t, repo.FinishWorkout(ctx, w.ID, "second"))
	second, err := repo.Workout(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, second.Status)
	assert.Equal(t, "second", second.Notes)
	require.NotNil(t, second.CompletedAt)
	assert.False(t, second.CompletedAt.Before(*first.CompletedAt))

	assert.ErrorIs(t, repo.FinishWorkout(ctx, w.ID+100, "nope"), ErrWorkoutNotFound)
}

func TestSQLiteRepo_CancelWorkout_StatusGuard(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	w, err := repo.StartWorkout(ctx, TypeStrength, time.Now())
	require.NoError(t, err)
	e, err := repo.AddExercise(ctx, w.ID, "Row")
	require.NoError(t, err)
	_, err = repo.AddSet(ctx, e.ID, 8, 60)
	require.NoError(t, err)
	require.NoError(t, repo.FinishWorkout(ctx, w.ID, ""))

	// cancel on a completed workout is a silent no-op, children included
	require.NoError(t, repo.CancelWorkout(ctx, w.ID))
	detail, err := repo.WorkoutDetail(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, detail.Exercises, 1)
	require.Len(t, detail.Exercises[0].Sets, 1)

	// delete removes the completed workout with all children
	require.NoError(t, repo.DeleteWorkout(ctx, w.ID))
	_, err = repo.Workout(ctx, w.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestSQLiteRepo_DeleteWorkout_StatusGuard(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	w, err := repo.StartWorkout(ctx, TypeStrength, time.Now())
	require.NoError(t, err)
	e, err := repo.AddExercise(ctx, w.ID, "Pullup")
	require.NoError(t, err)
	_, err = repo.AddSet(ctx, e.ID, 10, 0)
	require.NoError(t, err)

	// delete on an in-progress workout is a silent no-op, children included
	require.NoError(t, repo.DeleteWorkout(ctx, w.ID))
	detail, err := repo.WorkoutDetail(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, detail.Status)
	require.Len(t, detail.Exercises, 1)
	require.Len(t, detail.Exercises[0].Sets, 1)

	// cancel removes it entirely
	require.NoError(t, repo.CancelWorkout(ctx, w.ID))
	_, err = repo.Workout(ctx, w.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestSQLiteRepo_UpdateRun(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	w, err := repo.StartWorkout(ctx, TypeRun, time.Now())
	require.NoError(t, err)

	duration := 42
	distance := 8.5
	require.NoError(t, repo.UpdateRun(ctx, w.ID, &duration, &distance))

	gotten, err := repo.Workout(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, gotten.DurationMinutes)
	assert.Equal(t, 42, *gotten.DurationMinutes)
	require.NotNil(t, gotten.DistanceKM)
	assert.Equal(t, 8.5, *gotten.DistanceKM)

	// unparsable fields arrive as nil and are stored as null
	require.NoError(t, repo.UpdateRun(ctx, w.ID, nil, &distance))
	gotten, err = repo.Workout(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, gotten.DurationMinutes)
	require.NotNil(t, gotten.DistanceKM)

	assert.ErrorIs(t, repo.UpdateRun(ctx, w.ID+100, nil, nil), ErrWorkoutNotFound)

	// runs carry no exercises in the detail view
	detail, err := repo.WorkoutDetail(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Exercises)
}

func TestSQLiteRepo_ListCompleted(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	w1, err := repo.StartWorkout(ctx, TypeStrength, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	e, err := repo.AddExercise(ctx, w1.ID, "Bench")
	require.NoError(t, err)
	_, err = repo.AddSet(ctx, e.ID, 5, 100)
	require.NoError(t, err)
	_, err = repo.AddSet(ctx, e.ID, 5, 105)
	require.NoError(t, err)
	require.NoError(t, repo.FinishWorkout(ctx, w1.ID, ""))

	w2, err := repo.StartWorkout(ctx, TypeRun, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repo.FinishWorkout(ctx, w2.ID, ""))

	// in-progress workouts are not listed
	_, err = repo.StartWorkout(ctx, TypeCircuit, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	completed, err := repo.ListCompleted(ctx, 20)
	require.NoError(t, err)
	require.Len(t, completed, 2)

	// newest date first
	assert.Equal(t, w2.ID, completed[0].ID)
	assert.Equal(t, 0, completed[0].ExerciseCount)
	assert.Equal(t, 0, completed[0].SetCount)
	assert.Equal(t, w1.ID, completed[1].ID)
	assert.Equal(t, 1, completed[1].ExerciseCount)
	assert.Equal(t, 2, completed[1].SetCount)

	limited, err := repo.ListCompleted(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, w2.ID, limited[0].ID)
}

func TestSQLiteRepo_TemplateInstantiation(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	template, err := repo.CreateTemplate(ctx, "Push Day", TypeStrength)
	require.NoError(t, err)

	_, err = repo.AddTemplateExercise(ctx, template.ID, "Bench", 3, 8, 135)
	require.NoError(t, err)
	_, err = repo.AddTemplateExercise(ctx, template.ID, "OHP", 3, 10, 65)
	require.NoError(t, err)

	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	w, err := repo.StartWorkoutFromTemplate(ctx, template.ID, date)
	require.NoError(t, err)
	assert.Equal(t, TypeStrength, w.Type)
	require.NotNil(t, w.TemplateID)
	assert.Equal(t, template.ID, *w.TemplateID)

	detail, err := repo.WorkoutDetail(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, detail.Exercises, 2)

	bench := detail.Exercises[0]
	assert.Equal(t, "Bench", bench.Name)
	assert.Equal(t, 1, bench.OrderNum)
	require.NotNil(t, bench.TargetSets)
	assert.Equal(t, 3, *bench.TargetSets)
	require.NotNil(t, bench.TargetReps)
	assert.Equal(t, 8, *bench.TargetReps)
	require.NotNil(t, bench.TargetWeight)
	assert.Equal(t, 135.0, *bench.TargetWeight)
	assert.Empty(t, bench.Sets)

	ohp := detail.Exercises[1]
	assert.Equal(t, "OHP", ohp.Name)
	assert.Equal(t, 2, ohp.OrderNum)
	assert.Empty(t, ohp.Sets)
}

func TestSQLiteRepo_TemplateInstantiation_EmptyTemplate(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	template, err := repo.CreateTemplate(ctx, "Empty Day", TypeCircuit)
	require.NoError(t, err)

	w, err := repo.StartWorkoutFromTemplate(ctx, template.ID, time.Now())
	require.NoError(t, err)

	detail, err := repo.WorkoutDetail(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Exercises)

	_, err = repo.StartWorkoutFromTemplate(ctx, template.ID+100, time.Now())
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestSQLiteRepo_Templates(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	_, err := repo.CreateTemplate(ctx, "", TypeStrength)
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = repo.CreateTemplate(ctx, "   ", TypeStrength)
	assert.ErrorIs(t, err, ErrEmptyName)

	template, err := repo.CreateTemplate(ctx, "Leg Day", TypeStrength)
	require.NoError(t, err)

	_, err = repo.CreateTemplate(ctx, "Leg Day", TypeCircuit)
	require.Error(t, err)
	assert.True(t, pkg.IsUniqueViolationError(err))

	_, err = repo.AddTemplateExercise(ctx, template.ID, " ", DefaultTargetSets, DefaultTargetReps, DefaultTargetWeight)
	assert.ErrorIs(t, err, ErrEmptyName)

	te1, err := repo.AddTemplateExercise(ctx, template.ID, "Squat", DefaultTargetSets, DefaultTargetReps, DefaultTargetWeight)
	require.NoError(t, err)
	assert.Equal(t, 1, te1.OrderNum)
	te2, err := repo.AddTemplateExercise(ctx, template.ID, "Lunge", 4, 12, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, te2.OrderNum)

	list, err := repo.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Leg Day", list[0].Name)
	assert.Equal(t, 2, list[0].ExerciseCount)

	detail, err := repo.TemplateDetail(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, detail.Exercises, 2)
	assert.Equal(t, "Squat", detail.Exercises[0].Name)
	assert.Equal(t, "Lunge", detail.Exercises[1].Name)

	require.NoError(t, repo.DeleteTemplateExercise(ctx, te1.ID))
	assert.ErrorIs(t, repo.DeleteTemplateExercise(ctx, te1.ID), ErrTemplateExerciseNotFound)

	// order numbers are not reused after deletion
	te3, err := repo.AddTemplateExercise(ctx, template.ID, "Leg Press", 3, 10, 80)
	require.NoError(t, err)
	assert.Equal(t, 3, te3.OrderNum)
}

func TestSQLiteRepo_DeleteTemplate(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	template, err := repo.CreateTemplate(ctx, "Pull Day", TypeStrength)
	require.NoError(t, err)
	_, err = repo.AddTemplateExercise(ctx, template.ID, "Row", 3, 10, 50)
	require.NoError(t, err)

	w, err := repo.StartWorkoutFromTemplate(ctx, template.ID, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTemplate(ctx, template.ID))
	assert.ErrorIs(t, repo.DeleteTemplate(ctx, template.ID), ErrTemplateNotFound)

	_, err = repo.TemplateDetail(ctx, template.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	// started workouts survive, with the template reference cleared
	gotten, err := repo.Workout(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, gotten.TemplateID)
}

func TestSQLiteRepo_DeleteExercise_CascadesSets(t *testing.T) {
	ctx := context.Background()
	repo := testSQLiteRepoSetup(t)

	w, err := repo.StartWorkout(ctx, TypeStrength, time.Now())
	require.NoError(t, err)
	e, err := repo.AddExercise(ctx, w.ID, "Curl")
	require.NoError(t, err)
	s, err := repo.AddSet(ctx, e.ID, 12, 15)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteExercise(ctx, e.ID))
	assert.ErrorIs(t, repo.DeleteExercise(ctx, e.ID), ErrExerciseNotFound)
	assert.ErrorIs(t, repo.DeleteSet(ctx, s.ID), ErrSetNotFound)
}
