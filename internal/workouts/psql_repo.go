package workouts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dstanisic/fitlog/internal/telemetry/tracing"
)

// PostgresRepo is the networked server engine adapter.
type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{
		db: db,
	}
}

// InitSchema creates the workout store tables if not present.
func (r *PostgresRepo) InitSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS templates (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			workout_type TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS template_exercises (
			id SERIAL PRIMARY KEY,
			template_id INTEGER NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			order_num INTEGER NOT NULL,
			target_sets INTEGER NOT NULL DEFAULT 3,
			target_reps INTEGER NOT NULL DEFAULT 10,
			target_weight REAL NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS workouts (
			id SERIAL PRIMARY KEY,
			workout_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'in_progress',
			date DATE NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER,
			distance_km REAL,
			template_id INTEGER REFERENCES templates(id) ON DELETE SET NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS exercises (
			id SERIAL PRIMARY KEY,
			workout_id INTEGER NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			order_num INTEGER NOT NULL,
			target_sets INTEGER,
			target_reps INTEGER,
			target_weight REAL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS sets (
			id SERIAL PRIMARY KEY,
			exercise_id INTEGER NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
			set_number INTEGER NOT NULL,
			reps INTEGER NOT NULL,
			weight REAL NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (r *PostgresRepo) StartWorkout(ctx context.Context, workoutType string, date time.Time) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.type", workoutType))

	w := &Workout{
		Type:      workoutType,
		Status:    StatusInProgress,
		Date:      date,
		CreatedAt: time.Now(),
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO workouts (workout_type, status, date, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		w.Type, w.Status, w.Date, w.CreatedAt,
	).Scan(&w.ID)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", w.ID))
	return w, nil
}

func (r *PostgresRepo) StartWorkoutFromTemplate(ctx context.Context, templateID int, date time.Time) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.start-from-template")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", templateID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var t Template
	err = tx.QueryRow(ctx,
		`SELECT id, name, workout_type, created_at FROM templates WHERE id = $1;`,
		templateID,
	).Scan(&t.ID, &t.Name, &t.Type, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	w := &Workout{
		Type:       t.Type,
		Status:     StatusInProgress,
		Date:       date,
		TemplateID: &t.ID,
		CreatedAt:  time.Now(),
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO workouts (workout_type, status, date, template_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`,
		w.Type, w.Status, w.Date, w.TemplateID, w.CreatedAt,
	).Scan(&w.ID)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	// copy every template exercise, preserving order and targets
	_, err = tx.Exec(ctx, `
		INSERT INTO exercises (workout_id, name, order_num, target_sets, target_reps, target_weight, created_at)
		SELECT $1, name, order_num, target_sets, target_reps, target_weight, $2
		FROM template_exercises
		WHERE template_id = $3;`,
		w.ID, time.Now(), templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("copy template exercises: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", w.ID))
	return w, nil
}

const workoutColumns = `id, workout_type, status, date, notes, duration_minutes, distance_km, template_id, created_at, completed_at`

func scanWorkout(row pgx.Row) (*Workout, error) {
	var w Workout
	err := row.Scan(
		&w.ID, &w.Type, &w.Status, &w.Date, &w.Notes,
		&w.DurationMinutes, &w.DistanceKM, &w.TemplateID,
		&w.CreatedAt, &w.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *PostgresRepo) Workout(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", id))

	return scanWorkout(r.db.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1;`, id,
	))
}

func (r *PostgresRepo) InProgress(ctx context.Context) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.in-progress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return scanWorkout(r.db.QueryRow(ctx, `
		SELECT `+workoutColumns+` FROM workouts
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT 1;`,
		StatusInProgress,
	))
}

func (r *PostgresRepo) ListCompleted(ctx context.Context, limit int) (_ []WorkoutSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list-completed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(ctx, `
		SELECT `+workoutColumns+`,
			(SELECT COUNT(*) FROM exercises WHERE workout_id = w.id) AS exercise_count,
			(SELECT COUNT(*) FROM sets s JOIN exercises e ON s.exercise_id = e.id WHERE e.workout_id = w.id) AS set_count
		FROM workouts w
		WHERE w.status = $1
		ORDER BY w.date DESC, w.completed_at DESC
		LIMIT $2;`,
		StatusCompleted, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	summaries := make([]WorkoutSummary, 0)
	for rows.Next() {
		var s WorkoutSummary
		if err := rows.Scan(
			&s.ID, &s.Type, &s.Status, &s.Date, &s.Notes,
			&s.DurationMinutes, &s.DistanceKM, &s.TemplateID,
			&s.CreatedAt, &s.CompletedAt,
			&s.ExerciseCount, &s.SetCount,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *PostgresRepo) WorkoutDetail(ctx context.Context, id int) (_ *WorkoutDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.detail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", id))

	w, err := r.Workout(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &WorkoutDetail{
		Workout:   *w,
		Exercises: make([]ExerciseWithSets, 0),
	}
	if w.IsRun() {
		return detail, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, workout_id, name, order_num, target_sets, target_reps, target_weight, created_at
		FROM exercises
		WHERE workout_id = $1
		ORDER BY order_num;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	byExercise := make(map[int]int) // exercise id -> index in detail.Exercises
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(
			&e.ID, &e.WorkoutID, &e.Name, &e.OrderNum,
			&e.TargetSets, &e.TargetReps, &e.TargetWeight, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		byExercise[e.ID] = len(detail.Exercises)
		detail.Exercises = append(detail.Exercises, ExerciseWithSets{Exercise: e, Sets: make([]Set, 0)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	setRows, err := r.db.Query(ctx, `
		SELECT s.id, s.exercise_id, s.set_number, s.reps, s.weight, s.created_at
		FROM sets s
		JOIN exercises e ON s.exercise_id = e.id
		WHERE e.workout_id = $1
		ORDER BY e.order_num, s.set_number;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var s Set
		if err := setRows.Scan(&s.ID, &s.ExerciseID, &s.SetNumber, &s.Reps, &s.Weight, &s.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := byExercise[s.ExerciseID]; ok {
			detail.Exercises[i].Sets = append(detail.Exercises[i].Sets, s)
		}
	}
	if err := setRows.Err(); err != nil {
		return nil, err
	}

	return detail, nil
}

func (r *PostgresRepo) AddExercise(ctx context.Context, workoutID int, name string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add-exercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	e := &Exercise{
		WorkoutID: workoutID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	// order_num assigned in the same statement, so two concurrent adds
	// cannot read the same max
	err = r.db.QueryRow(ctx, `
		INSERT INTO exercises (workout_id, name, order_num, created_at)
		VALUES ($1, $2, (SELECT COALESCE(MAX(order_num), 0) + 1 FROM exercises WHERE workout_id = $1), $3)
		RETURNING id, order_num;`,
		workoutID, name, e.CreatedAt,
	).Scan(&e.ID, &e.OrderNum)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}
	return e, nil
}

func (r *PostgresRepo) AddSet(ctx context.Context, exerciseID, reps int, weight float64) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add-set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	s := &Set{
		ExerciseID: exerciseID,
		Reps:       reps,
		Weight:     weight,
		CreatedAt:  time.Now(),
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO sets (exercise_id, set_number, reps, weight, created_at)
		VALUES ($1, (SELECT COALESCE(MAX(set_number), 0) + 1 FROM sets WHERE exercise_id = $1), $2, $3, $4)
		RETURNING id, set_number;`,
		exerciseID, reps, weight, s.CreatedAt,
	).Scan(&s.ID, &s.SetNumber)
	if err != nil {
		return nil, fmt.Errorf("insert set: %w", err)
	}
	return s, nil
}

func (r *PostgresRepo) DeleteSet(ctx context.Context, setID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete-set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("set.id", setID))

	tag, err := r.db.Exec(ctx, `DELETE FROM sets WHERE id = $1`, setID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSetNotFound
	}
	return nil
}

func (r *PostgresRepo) DeleteExercise(ctx context.Context, exerciseID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete-exercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM sets WHERE exercise_id = $1`, exerciseID); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, exerciseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, workoutID int, durationMinutes *int, distanceKM *float64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update-run")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	tag, err := r.db.Exec(ctx,
		`UPDATE workouts SET duration_minutes = $1, distance_km = $2 WHERE id = $3;`,
		durationMinutes, distanceKM, workoutID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *PostgresRepo) FinishWorkout(ctx context.Context, workoutID int, notes string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.finish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	tag, err := r.db.Exec(ctx,
		`UPDATE workouts SET status = $1, notes = $2, completed_at = $3 WHERE id = $4;`,
		StatusCompleted, notes, time.Now(), workoutID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// CancelWorkout deletes an in-progress workout with all its exercises and
// sets. A no-op for completed or absent workouts.
func (r *PostgresRepo) CancelWorkout(ctx context.Context, workoutID int) error {
	return r.deleteWithStatus(ctx, "repo.workouts.cancel", workoutID, StatusInProgress)
}

// DeleteWorkout deletes a completed workout with all its exercises and
// sets. A no-op for in-progress or absent workouts.
func (r *PostgresRepo) DeleteWorkout(ctx context.Context, workoutID int) error {
	return r.deleteWithStatus(ctx, "repo.workouts.delete", workoutID, StatusCompleted)
}

func (r *PostgresRepo) deleteWithStatus(ctx context.Context, spanName string, workoutID int, status string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, spanName)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// children first; guarded by the owning workout's status so that the
	// whole operation is a no-op when the status disallows it
	if _, err = tx.Exec(ctx, `
		DELETE FROM sets WHERE exercise_id IN (
			SELECT e.id FROM exercises e
			JOIN workouts w ON e.workout_id = w.id
			WHERE w.id = $1 AND w.status = $2
		);`, workoutID, status); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		DELETE FROM exercises WHERE workout_id IN (
			SELECT id FROM workouts WHERE id = $1 AND status = $2
		);`, workoutID, status); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND status = $2;`,
		workoutID, status,
	); err != nil {
		return err
	}
	return nil
}

func (r *PostgresRepo) CreateTemplate(ctx context.Context, name, workoutType string) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.name", name))

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	t := &Template{
		Name:      name,
		Type:      workoutType,
		CreatedAt: time.Now(),
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO templates (name, workout_type, created_at)
		VALUES ($1, $2, $3)
		RETURNING id;`,
		t.Name, t.Type, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return t, nil
}

func (r *PostgresRepo) Template(ctx context.Context, id int) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", id))

	var t Template
	err = r.db.QueryRow(ctx,
		`SELECT id, name, workout_type, created_at FROM templates WHERE id = $1;`, id,
	).Scan(&t.ID, &t.Name, &t.Type, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PostgresRepo) TemplateDetail(ctx context.Context, id int) (_ *TemplateDetail, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.detail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", id))

	t, err := r.Template(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, template_id, name, order_num, target_sets, target_reps, target_weight
		FROM template_exercises
		WHERE template_id = $1
		ORDER BY order_num;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query template exercises: %w", err)
	}
	defer rows.Close()

	detail := &TemplateDetail{
		Template:  *t,
		Exercises: make([]TemplateExercise, 0),
	}
	for rows.Next() {
		var te TemplateExercise
		if err := rows.Scan(&te.ID, &te.TemplateID, &te.Name, &te.OrderNum, &te.TargetSets, &te.TargetReps, &te.TargetWeight); err != nil {
			return nil, err
		}
		detail.Exercises = append(detail.Exercises, te)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return detail, nil
}

func (r *PostgresRepo) ListTemplates(ctx context.Context) (_ []TemplateSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, workout_type, created_at,
			(SELECT COUNT(*) FROM template_exercises WHERE template_id = t.id) AS exercise_count
		FROM templates t
		ORDER BY created_at DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	summaries := make([]TemplateSummary, 0)
	for rows.Next() {
		var s TemplateSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.CreatedAt, &s.ExerciseCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *PostgresRepo) AddTemplateExercise(ctx context.Context, templateID int, name string, targetSets, targetReps int, targetWeight float64) (_ *TemplateExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.add-exercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", templateID))

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	te := &TemplateExercise{
		TemplateID:   templateID,
		Name:         name,
		TargetSets:   targetSets,
		TargetReps:   targetReps,
		TargetWeight: targetWeight,
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO template_exercises (template_id, name, order_num, target_sets, target_reps, target_weight)
		VALUES ($1, $2, (SELECT COALESCE(MAX(order_num), 0) + 1 FROM template_exercises WHERE template_id = $1), $3, $4, $5)
		RETURNING id, order_num;`,
		templateID, name, targetSets, targetReps, targetWeight,
	).Scan(&te.ID, &te.OrderNum)
	if err != nil {
		return nil, fmt.Errorf("insert template exercise: %w", err)
	}
	return te, nil
}

func (r *PostgresRepo) DeleteTemplateExercise(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.delete-exercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template_exercise.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM template_exercises WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateExerciseNotFound
	}
	return nil
}

func (r *PostgresRepo) DeleteTemplate(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", id))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM template_exercises WHERE template_id = $1`, id); err != nil {
		return err
	}
	// started workouts keep their copied targets; only the reference is cleared
	if _, err = tx.Exec(ctx, `UPDATE workouts SET template_id = NULL WHERE template_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
