package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dstanisic/fitlog/internal/telemetry/metrics"
	"github.com/dstanisic/fitlog/internal/telemetry/tracing"
	"github.com/dstanisic/fitlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type workoutsRepo interface {
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
	ListTemplates(ctx context.Context) ([]TemplateSummary, error)
}

// completedHistoryLimit caps the home view history list.
const completedHistoryLimit = 20

type HomeResponse struct {
	InProgress *Workout         `json:"inProgress,omitempty"`
	Workouts   []WorkoutSummary `json:"workouts"`
}

type NewWorkoutOptionsResponse struct {
	WorkoutTypes []string          `json:"workoutTypes"`
	Templates    []TemplateSummary `json:"templates"`
}

type Handler struct {
	repo    workoutsRepo
	metrics *metrics.Manager
}

func NewHandler(repo workoutsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/", handler.HandleHome).Methods("GET").Name("home")
	router.HandleFunc("/workout/new", handler.HandleNew).Methods("GET").Name("new-workout")
	router.HandleFunc("/workout/start", handler.HandleStart).Methods("POST").Name("start-workout")
	router.HandleFunc("/workout/start-from-template/{id}", handler.HandleStartFromTemplate).Methods("POST").Name("start-workout-from-template")
	router.HandleFunc("/workout/{id}/active", handler.HandleActive).Methods("GET").Name("active-workout")
	router.HandleFunc("/workout/{id}/run", handler.HandleRun).Methods("GET").Name("active-run")
	router.HandleFunc("/workout/{id}/add_exercise", handler.HandleAddExercise).Methods("POST").Name("add-exercise")
	router.HandleFunc("/workout/{id}/exercise/{eid}/add_set", handler.HandleAddSet).Methods("POST").Name("add-set")
	router.HandleFunc("/workout/{id}/exercise/{eid}/delete_set/{sid}", handler.HandleDeleteSet).Methods("POST").Name("delete-set")
	router.HandleFunc("/workout/{id}/delete_exercise/{eid}", handler.HandleDeleteExercise).Methods("POST").Name("delete-exercise")
	router.HandleFunc("/workout/{id}/update_run", handler.HandleUpdateRun).Methods("POST").Name("update-run")
	router.HandleFunc("/workout/{id}/summary", handler.HandleSummary).Methods("GET").Name("workout-summary")
	router.HandleFunc("/workout/{id}/finish", handler.HandleFinish).Methods("POST").Name("finish-workout")
	router.HandleFunc("/workout/{id}/cancel", handler.HandleCancel).Methods("POST").Name("cancel-workout")
	router.HandleFunc("/workout/{id}/delete", handler.HandleDelete).Methods("POST").Name("delete-workout")
	router.HandleFunc("/workout/{id}", handler.HandleView).Methods("GET").Name("view-workout")
}

// HandleHome pairs the most recent in-progress workout, if any,
// with the recent completed history.
func (handler *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.home")
	defer span.End()

	inProgress, err := handler.repo.InProgress(ctx)
	if err != nil && !errors.Is(err, ErrWorkoutNotFound) {
		log.Errorf("home view, get in-progress workout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	completed, err := handler.repo.ListCompleted(ctx, completedHistoryLimit)
	if err != nil {
		log.Errorf("home view, list completed workouts: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(HomeResponse{
		InProgress: inProgress,
		Workouts:   completed,
	})
	if err != nil {
		log.Errorf("home view, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// HandleNew serves the workout-type / template picker data.
func (handler *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.new")
	defer span.End()

	templates, err := handler.repo.ListTemplates(ctx)
	if err != nil {
		log.Errorf("new workout view, list templates: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(NewWorkoutOptionsResponse{
		WorkoutTypes: []string{TypeStrength, TypeCircuit, TypeRun},
		Templates:    templates,
	})
	if err != nil {
		log.Errorf("new workout view, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// workoutDate reads the date form field, falling back to today.
func workoutDate(r *http.Request) time.Time {
	if d, err := time.Parse("2006-01-02", r.FormValue("date")); err == nil {
		return d
	}
	return time.Now().Truncate(24 * time.Hour)
}

func activeViewPath(w *Workout) string {
	if w.IsRun() {
		return fmt.Sprintf("/workout/%d/run", w.ID)
	}
	return fmt.Sprintf("/workout/%d/active", w.ID)
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.start")
	defer span.End()

	workoutType := r.FormValue("workout_type")
	if workoutType == "" {
		http.Error(w, "error, workout type empty", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.StartWorkout(ctx, workoutType, workoutDate(r))
	if err != nil {
		log.Errorf("failed to start [%s] workout: %s", workoutType, err)
		http.Error(w, "error, failed to start workout", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkoutsStarted.Inc()
	log.Debugf("workout %d [%s] started", workout.ID, workout.Type)

	http.Redirect(w, r, activeViewPath(workout), http.StatusSeeOther)
}

func (handler *Handler) HandleStartFromTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.startFromTemplate")
	defer span.End()

	templateID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, template id NaN", http.StatusBadRequest)
		return
	}

	workout, err := handler.repo.StartWorkoutFromTemplate(ctx, templateID, workoutDate(r))
	if errors.Is(err, ErrTemplateNotFound) {
		http.Redirect(w, r, "/templates", http.StatusSeeOther)
		return
	}
	if err != nil {
		log.Errorf("failed to start workout from template %d: %s", templateID, err)
		http.Error(w, "error, failed to start workout", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkoutsStarted.Inc()
	log.Debugf("workout %d started from template %d", workout.ID, templateID)

	http.Redirect(w, r, activeViewPath(workout), http.StatusSeeOther)
}

// inProgressWorkout loads the workout for an active entry view. A nil
// workout with a nil error means the caller was already redirected home.
func (handler *Handler) inProgressWorkout(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Workout, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, nil
	}

	workout, err := handler.repo.Workout(ctx, id)
	if errors.Is(err, ErrWorkoutNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if workout.Status != StatusInProgress {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, nil
	}
	return workout, nil
}

// HandleActive serves the exercise/set entry view of an in-progress workout.
func (handler *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.active")
	defer span.End()

	workout, err := handler.inProgressWorkout(ctx, w, r)
	if err != nil {
		log.Errorf("active workout view: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if workout == nil {
		return
	}

	detail, err := handler.repo.WorkoutDetail(ctx, workout.ID)
	if err != nil {
		log.Errorf("active workout view, load detail %d: %s", workout.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	detailJson, err := json.Marshal(detail)
	if err != nil {
		log.Errorf("active workout view, marshal detail: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, detailJson, http.StatusOK)
}

// HandleRun serves the duration/distance entry view of an in-progress run.
func (handler *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.run")
	defer span.End()

	workout, err := handler.inProgressWorkout(ctx, w, r)
	if err != nil {
		log.Errorf("active run view: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if workout == nil {
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("active run view, marshal workout: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addExercise")
	defer span.End()

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}

	backToActive := fmt.Sprintf("/workout/%d/active", workoutID)

	name := strings.TrimSpace(r.FormValue("exercise_name"))
	if name == "" {
		http.Redirect(w, r, backToActive, http.StatusSeeOther)
		return
	}

	if _, err := handler.repo.AddExercise(ctx, workoutID, name); err != nil {
		log.Errorf("failed to add exercise [%s] to workout %d: %s", name, workoutID, err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, backToActive, http.StatusSeeOther)
}

func (handler *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addSet")
	defer span.End()

	vars := mux.Vars(r)
	workoutID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}
	exerciseID, err := strconv.Atoi(vars["eid"])
	if err != nil {
		http.Error(w, "error, exercise id NaN", http.StatusBadRequest)
		return
	}

	reps, err := strconv.Atoi(r.FormValue("reps"))
	if err != nil {
		http.Error(w, "parse form error, parameter <reps>", http.StatusBadRequest)
		return
	}
	weight, err := strconv.ParseFloat(r.FormValue("weight"), 64)
	if err != nil {
		http.Error(w, "parse form error, parameter <weight>", http.StatusBadRequest)
		return
	}

	if _, err := handler.repo.AddSet(ctx, exerciseID, reps, weight); err != nil {
		log.Errorf("failed to add set to exercise %d: %s", exerciseID, err)
		http.Error(w, "error, failed to add set", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/workout/%d/active", workoutID), http.StatusSeeOther)
}

func (handler *Handler) HandleDeleteSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteSet")
	defer span.End()

	vars := mux.Vars(r)
	workoutID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}
	setID, err := strconv.Atoi(vars["sid"])
	if err != nil {
		http.Error(w, "error, set id NaN", http.StatusBadRequest)
		return
	}

	backToActive := fmt.Sprintf("/workout/%d/active", workoutID)

	err = handler.repo.DeleteSet(ctx, setID)
	if err != nil && !errors.Is(err, ErrSetNotFound) {
		log.Errorf("failed to delete set %d: %s", setID, err)
		http.Error(w, "error, failed to delete set", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, backToActive, http.StatusSeeOther)
}

func (handler *Handler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteExercise")
	defer span.End()

	vars := mux.Vars(r)
	workoutID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}
	exerciseID, err := strconv.Atoi(vars["eid"])
	if err != nil {
		http.Error(w, "error, exercise id NaN", http.StatusBadRequest)
		return
	}

	err = handler.repo.DeleteExercise(ctx, exerciseID)
	if err != nil && !errors.Is(err, ErrExerciseNotFound) {
		log.Errorf("failed to delete exercise %d: %s", exerciseID, err)
		http.Error(w, "error, failed to delete exercise", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/workout/%d/active", workoutID), http.StatusSeeOther)
}

func (handler *Handler) HandleUpdateRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateRun")
	defer span.End()

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}

	// unparsable run fields are stored as null, not rejected
	var durationMinutes *int
	if d, err := strconv.Atoi(r.FormValue("duration_minutes")); err == nil {
		durationMinutes = &d
	}
	var distanceKM *float64
	if km, err := strconv.ParseFloat(r.FormValue("distance_km"), 64); err == nil {
		distanceKM = &km
	}

	err = handler.repo.UpdateRun(ctx, workoutID, durationMinutes, distanceKM)
	if err != nil && !errors.Is(err, ErrWorkoutNotFound) {
		log.Errorf("failed to update run %d: %s", workoutID, err)
		http.Error(w, "error, failed to update run", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/workout/%d/summary", workoutID), http.StatusSeeOther)
}

// HandleSummary serves the pre-finish review, reachable for any
// existing workout regardless of status.
func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.summary")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	detail, err := handler.repo.WorkoutDetail(ctx, id)
	if errors.Is(err, ErrWorkoutNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		log.Errorf("workout summary view %d: %s", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	detailJson, err := json.Marshal(detail)
	if err != nil {
		log.Errorf("workout summary view, marshal detail: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, detailJson, http.StatusOK)
}

func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.finish")
	defer span.End()

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}

	notes := r.FormValue("notes")
	err = handler.repo.FinishWorkout(ctx, workoutID, notes)
	if err != nil && !errors.Is(err, ErrWorkoutNotFound) {
		log.Errorf("failed to finish workout %d: %s", workoutID, err)
		http.Error(w, "error, failed to finish workout", http.StatusInternalServerError)
		return
	}

	if err == nil {
		handler.metrics.CounterWorkoutsFinished.Inc()
		log.Debugf("workout %d finished", workoutID)
	}

	http.Redirect(w, r, fmt.Sprintf("/workout/%d", workoutID), http.StatusSeeOther)
}

func (handler *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.cancel")
	defer span.End()

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.CancelWorkout(ctx, workoutID); err != nil {
		log.Errorf("failed to cancel workout %d: %s", workoutID, err)
		http.Error(w, "error, failed to cancel workout", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleView serves the completed workout detail; in-progress workouts
// are sent back to their entry view instead.
func (handler *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.view")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	workout, err := handler.repo.Workout(ctx, id)
	if errors.Is(err, ErrWorkoutNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		log.Errorf("workout view %d: %s", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if workout.Status == StatusInProgress {
		http.Redirect(w, r, activeViewPath(workout), http.StatusSeeOther)
		return
	}

	detail, err := handler.repo.WorkoutDetail(ctx, id)
	if err != nil {
		log.Errorf("workout view, load detail %d: %s", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	detailJson, err := json.Marshal(detail)
	if err != nil {
		log.Errorf("workout view, marshal detail: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, detailJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, workout id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.DeleteWorkout(ctx, workoutID); err != nil {
		log.Errorf("failed to delete workout %d: %s", workoutID, err)
		http.Error(w, "error, failed to delete workout", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
