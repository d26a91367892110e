package workouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// SQLiteRepo is the local embedded engine adapter, running on the pure Go
// sqlite driver. Same query semantics as PostgresRepo, with ? placeholders,
// last-insert-id instead of RETURNING, and dates stored as text.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{
		db: db,
	}
}

// InitSchema creates the workout store tables if not present.
func (r *SQLiteRepo) InitSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS templates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			workout_type TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS template_exercises (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			template_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			order_num INTEGER NOT NULL,
			target_sets INTEGER NOT NULL DEFAULT 3,
			target_reps INTEGER NOT NULL DEFAULT 10,
			target_weight REAL NOT NULL DEFAULT 0,
			FOREIGN KEY (template_id) REFERENCES templates (id) ON DELETE CASCADE
		);
		CREATE TABLE IF NOT EXISTS workouts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workout_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'in_progress',
			date TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER,
			distance_km REAL,
			template_id INTEGER,
			created_at TEXT NOT NULL,
			completed_at TEXT,
			FOREIGN KEY (template_id) REFERENCES templates (id) ON DELETE SET NULL
		);
		CREATE TABLE IF NOT EXISTS exercises (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			workout_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			order_num INTEGER NOT NULL,
			target_sets INTEGER,
			target_reps INTEGER,
			target_weight REAL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (workout_id) REFERENCES workouts (id) ON DELETE CASCADE
		);
		CREATE TABLE IF NOT EXISTS sets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exercise_id INTEGER NOT NULL,
			set_number INTEGER NOT NULL,
			reps INTEGER NOT NULL,
			weight REAL NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (exercise_id) REFERENCES exercises (id) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) StartWorkout(ctx context.Context, workoutType string, date time.Time) (*Workout, error) {
	w := &Workout{
		Type:      workoutType,
		Status:    StatusInProgress,
		Date:      date,
		CreatedAt: time.Now(),
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO workouts (workout_type, status, date, created_at) VALUES (?, ?, ?, ?)`,
		w.Type, w.Status, w.Date.Format(dateLayout), w.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	w.ID = int(id)
	return w, nil
}

func (r *SQLiteRepo) StartWorkoutFromTemplate(ctx context.Context, templateID int, date time.Time) (_ *Workout, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	t, err := scanSQLiteTemplate(tx.QueryRowContext(ctx,
		`SELECT id, name, workout_type, created_at FROM templates WHERE id = ?`, templateID,
	))
	if err != nil {
		return nil, err
	}

	w := &Workout{
		Type:       t.Type,
		Status:     StatusInProgress,
		Date:       date,
		TemplateID: &t.ID,
		CreatedAt:  time.Now(),
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO workouts (workout_type, status, date, template_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		w.Type, w.Status, w.Date.Format(dateLayout), t.ID, w.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	w.ID = int(id)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO exercises (workout_id, name, order_num, target_sets, target_reps, target_weight, created_at)
		SELECT ?, name, order_num, target_sets, target_reps, target_weight, ?
		FROM template_exercises
		WHERE template_id = ?`,
		w.ID, time.Now().Format(time.RFC3339Nano), templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("copy template exercises: %w", err)
	}
	return w, nil
}

type sqliteRow interface {
	Scan(dest ...any) error
}

func scanSQLiteWorkout(row sqliteRow) (*Workout, error) {
	var w Workout
	var date, createdAt string
	var notes sql.NullString
	var durationMinutes, templateID sql.NullInt64
	var distanceKM sql.NullFloat64
	var completedAt sql.NullString

	err := row.Scan(
		&w.ID, &w.Type, &w.Status, &date, &notes,
		&durationMinutes, &distanceKM, &templateID,
		&createdAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	if w.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("parse workout date: %w", err)
	}
	if w.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse workout created_at: %w", err)
	}
	w.Notes = notes.String
	if durationMinutes.Valid {
		d := int(durationMinutes.Int64)
		w.DurationMinutes = &d
	}
	if distanceKM.Valid {
		km := distanceKM.Float64
		w.DistanceKM = &km
	}
	if templateID.Valid {
		tid := int(templateID.Int64)
		w.TemplateID = &tid
	}
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse workout completed_at: %w", err)
		}
		w.CompletedAt = &t
	}
	return &w, nil
}

func (r *SQLiteRepo) Workout(ctx context.Context, id int) (*Workout, error) {
	return scanSQLiteWorkout(r.db.QueryRowContext(ctx, `
		SELECT id, workout_type, status, date, notes, duration_minutes, distance_km, template_id, created_at, completed_at
		FROM workouts WHERE id = ?`, id,
	))
}

func (r *SQLiteRepo) InProgress(ctx context.Context) (*Workout, error) {
	return scanSQLiteWorkout(r.db.QueryRowContext(ctx, `
		SELECT id, workout_type, status, date, notes, duration_minutes, distance_km, template_id, created_at, completed_at
		FROM workouts
		WHERE status = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, StatusInProgress,
	))
}

func (r *SQLiteRepo) ListCompleted(ctx context.Context, limit int) ([]WorkoutSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.id, w.workout_type, w.status, w.date, w.notes, w.duration_minutes, w.distance_km, w.template_id, w.created_at, w.completed_at,
			(SELECT COUNT(*) FROM exercises WHERE workout_id = w.id) AS exercise_count,
			(SELECT COUNT(*) FROM sets s JOIN exercises e ON s.exercise_id = e.id WHERE e.workout_id = w.id) AS set_count
		FROM workouts w
		WHERE w.status = ?
		ORDER BY w.date DESC, w.completed_at DESC
		LIMIT ?`,
		StatusCompleted, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	summaries := make([]WorkoutSummary, 0)
	for rows.Next() {
		var exerciseCount, setCount int
		w, err := scanSQLiteWorkoutSummary(rows, &exerciseCount, &setCount)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, WorkoutSummary{
			Workout:       *w,
			ExerciseCount: exerciseCount,
			SetCount:      setCount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func scanSQLiteWorkoutSummary(rows *sql.Rows, exerciseCount, setCount *int) (*Workout, error) {
	var w Workout
	var date, createdAt string
	var notes sql.NullString
	var durationMinutes, templateID sql.NullInt64
	var distanceKM sql.NullFloat64
	var completedAt sql.NullString

	if err := rows.Scan(
		&w.ID, &w.Type, &w.Status, &date, &notes,
		&durationMinutes, &distanceKM, &templateID,
		&createdAt, &completedAt,
		exerciseCount, setCount,
	); err != nil {
		return nil, err
	}

	var err error
	if w.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("parse workout date: %w", err)
	}
	if w.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse workout created_at: %w", err)
	}
	w.Notes = notes.String
	if durationMinutes.Valid {
		d := int(durationMinutes.Int64)
		w.DurationMinutes = &d
	}
	if distanceKM.Valid {
		km := distanceKM.Float64
		w.DistanceKM = &km
	}
	if templateID.Valid {
		tid := int(templateID.Int64)
		w.TemplateID = &tid
	}
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse workout completed_at: %w", err)
		}
		w.CompletedAt = &t
	}
	return &w, nil
}

func (r *SQLiteRepo) WorkoutDetail(ctx context.Context, id int) (*WorkoutDetail, error) {
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

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workout_id, name, order_num, target_sets, target_reps, target_weight, created_at
		FROM exercises
		WHERE workout_id = ?
		ORDER BY order_num`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	byExercise := make(map[int]int)
	for rows.Next() {
		var e Exercise
		var createdAt string
		var targetSets, targetReps sql.NullInt64
		var targetWeight sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.OrderNum, &targetSets, &targetReps, &targetWeight, &createdAt); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse exercise created_at: %w", err)
		}
		if targetSets.Valid {
			v := int(targetSets.Int64)
			e.TargetSets = &v
		}
		if targetReps.Valid {
			v := int(targetReps.Int64)
			e.TargetReps = &v
		}
		if targetWeight.Valid {
			v := targetWeight.Float64
			e.TargetWeight = &v
		}
		byExercise[e.ID] = len(detail.Exercises)
		detail.Exercises = append(detail.Exercises, ExerciseWithSets{Exercise: e, Sets: make([]Set, 0)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	setRows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.exercise_id, s.set_number, s.reps, s.weight, s.created_at
		FROM sets s
		JOIN exercises e ON s.exercise_id = e.id
		WHERE e.workout_id = ?
		ORDER BY e.order_num, s.set_number`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var s Set
		var createdAt string
		if err := setRows.Scan(&s.ID, &s.ExerciseID, &s.SetNumber, &s.Reps, &s.Weight, &createdAt); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse set created_at: %w", err)
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

func (r *SQLiteRepo) AddExercise(ctx context.Context, workoutID int, name string) (*Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	e := &Exercise{
		WorkoutID: workoutID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO exercises (workout_id, name, order_num, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(order_num), 0) + 1 FROM exercises WHERE workout_id = ?), ?)`,
		workoutID, name, workoutID, e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = int(id)

	if err := r.db.QueryRowContext(ctx,
		`SELECT order_num FROM exercises WHERE id = ?`, e.ID,
	).Scan(&e.OrderNum); err != nil {
		return nil, fmt.Errorf("read back order_num: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepo) AddSet(ctx context.Context, exerciseID, reps int, weight float64) (*Set, error) {
	s := &Set{
		ExerciseID: exerciseID,
		Reps:       reps,
		Weight:     weight,
		CreatedAt:  time.Now(),
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sets (exercise_id, set_number, reps, weight, created_at)
		VALUES (?, (SELECT COALESCE(MAX(set_number), 0) + 1 FROM sets WHERE exercise_id = ?), ?, ?, ?)`,
		exerciseID, exerciseID, reps, weight, s.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert set: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	s.ID = int(id)

	if err := r.db.QueryRowContext(ctx,
		`SELECT set_number FROM sets WHERE id = ?`, s.ID,
	).Scan(&s.SetNumber); err != nil {
		return nil, fmt.Errorf("read back set_number: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepo) DeleteSet(ctx context.Context, setID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sets WHERE id = ?`, setID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSetNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeleteExercise(ctx context.Context, exerciseID int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM sets WHERE exercise_id = ?`, exerciseID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?`, exerciseID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *SQLiteRepo) UpdateRun(ctx context.Context, workoutID int, durationMinutes *int, distanceKM *float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workouts SET duration_minutes = ?, distance_km = ? WHERE id = ?`,
		durationMinutes, distanceKM, workoutID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *SQLiteRepo) FinishWorkout(ctx context.Context, workoutID int, notes string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workouts SET status = ?, notes = ?, completed_at = ? WHERE id = ?`,
		StatusCompleted, notes, time.Now().Format(time.RFC3339Nano), workoutID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *SQLiteRepo) CancelWorkout(ctx context.Context, workoutID int) error {
	return r.deleteWithStatus(ctx, workoutID, StatusInProgress)
}

func (r *SQLiteRepo) DeleteWorkout(ctx context.Context, workoutID int) error {
	return r.deleteWithStatus(ctx, workoutID, StatusCompleted)
}

func (r *SQLiteRepo) deleteWithStatus(ctx context.Context, workoutID int, status string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM sets WHERE exercise_id IN (
			SELECT e.id FROM exercises e
			JOIN workouts w ON e.workout_id = w.id
			WHERE w.id = ? AND w.status = ?
		)`, workoutID, status); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		DELETE FROM exercises WHERE workout_id IN (
			SELECT id FROM workouts WHERE id = ? AND status = ?
		)`, workoutID, status); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM workouts WHERE id = ? AND status = ?`,
		workoutID, status,
	); err != nil {
		return err
	}
	return nil
}

func (r *SQLiteRepo) CreateTemplate(ctx context.Context, name, workoutType string) (*Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	t := &Template{
		Name:      name,
		Type:      workoutType,
		CreatedAt: time.Now(),
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO templates (name, workout_type, created_at) VALUES (?, ?, ?)`,
		t.Name, t.Type, t.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	t.ID = int(id)
	return t, nil
}

func scanSQLiteTemplate(row sqliteRow) (*Template, error) {
	var t Template
	var createdAt string
	err := row.Scan(&t.ID, &t.Name, &t.Type, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse template created_at: %w", err)
	}
	return &t, nil
}

func (r *SQLiteRepo) Template(ctx context.Context, id int) (*Template, error) {
	return scanSQLiteTemplate(r.db.QueryRowContext(ctx,
		`SELECT id, name, workout_type, created_at FROM templates WHERE id = ?`, id,
	))
}

func (r *SQLiteRepo) TemplateDetail(ctx context.Context, id int) (*TemplateDetail, error) {
	t, err := r.Template(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, template_id, name, order_num, target_sets, target_reps, target_weight
		FROM template_exercises
		WHERE template_id = ?
		ORDER BY order_num`, id,
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

func (r *SQLiteRepo) ListTemplates(ctx context.Context) ([]TemplateSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, workout_type, created_at,
			(SELECT COUNT(*) FROM template_exercises WHERE template_id = t.id) AS exercise_count
		FROM templates t
		ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	summaries := make([]TemplateSummary, 0)
	for rows.Next() {
		var s TemplateSummary
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &createdAt, &s.ExerciseCount); err != nil {
			return nil, err
		}
		if s.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse template created_at: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *SQLiteRepo) AddTemplateExercise(ctx context.Context, templateID int, name string, targetSets, targetReps int, targetWeight float64) (*TemplateExercise, error) {
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
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO template_exercises (template_id, name, order_num, target_sets, target_reps, target_weight)
		VALUES (?, ?, (SELECT COALESCE(MAX(order_num), 0) + 1 FROM template_exercises WHERE template_id = ?), ?, ?, ?)`,
		templateID, name, templateID, targetSets, targetReps, targetWeight,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template exercise: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	te.ID = int(id)

	if err := r.db.QueryRowContext(ctx,
		`SELECT order_num FROM template_exercises WHERE id = ?`, te.ID,
	).Scan(&te.OrderNum); err != nil {
		return nil, fmt.Errorf("read back order_num: %w", err)
	}
	return te, nil
}

func (r *SQLiteRepo) DeleteTemplateExercise(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM template_exercises WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTemplateExerciseNotFound
	}
	return nil
}

func (r *SQLiteRepo) DeleteTemplate(ctx context.Context, id int) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM template_exercises WHERE template_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE workouts SET template_id = NULL WHERE template_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
