package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dstanisic/fitlog/internal/telemetry/tracing"
	"github.com/dstanisic/fitlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type templatesRepo interface {
	CreateTemplate(ctx context.Context, name, workoutType string) (*Template, error)
	TemplateDetail(ctx context.Context, id int) (*TemplateDetail, error)
	ListTemplates(ctx context.Context) ([]TemplateSummary, error)
	AddTemplateExercise(ctx context.Context, templateID int, name string, targetSets, targetReps int, targetWeight float64) (*TemplateExercise, error)
	DeleteTemplateExercise(ctx context.Context, id int) error
	DeleteTemplate(ctx context.Context, id int) error
}

type TemplatesListResponse struct {
	Templates []TemplateSummary `json:"templates"`
}

type NewTemplateOptionsResponse struct {
	WorkoutTypes []string `json:"workoutTypes"`
}

type TemplatesHandler struct {
	repo templatesRepo
}

func NewTemplatesHandler(repo templatesRepo) *TemplatesHandler {
	return &TemplatesHandler{
		repo: repo,
	}
}

func (handler *TemplatesHandler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/templates", handler.HandleList).Methods("GET").Name("list-templates")
	router.HandleFunc("/templates/new", handler.HandleNew).Methods("GET").Name("new-template")
	router.HandleFunc("/templates/new", handler.HandleCreate).Methods("POST").Name("create-template")
	router.HandleFunc("/templates/{id}/edit", handler.HandleEdit).Methods("GET").Name("edit-template")
	router.HandleFunc("/templates/{id}/add_exercise", handler.HandleAddExercise).Methods("POST").Name("add-template-exercise")
	router.HandleFunc("/templates/{id}/delete_exercise/{eid}", handler.HandleDeleteExercise).Methods("POST").Name("delete-template-exercise")
	router.HandleFunc("/templates/{id}/delete", handler.HandleDelete).Methods("POST").Name("delete-template")
	router.HandleFunc("/templates/{id}", handler.HandleGet).Methods("GET").Name("view-template")
}

func (handler *TemplatesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.list")
	defer span.End()

	templates, err := handler.repo.ListTemplates(ctx)
	if err != nil {
		log.Errorf("list templates: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(TemplatesListResponse{Templates: templates})
	if err != nil {
		log.Errorf("list templates, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *TemplatesHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.new")
	defer span.End()

	respJson, err := json.Marshal(NewTemplateOptionsResponse{
		WorkoutTypes: []string{TypeStrength, TypeCircuit, TypeRun},
	})
	if err != nil {
		log.Errorf("new template view, marshal response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *TemplatesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.create")
	defer span.End()

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/templates/new", http.StatusSeeOther)
		return
	}
	workoutType := r.FormValue("workout_type")
	if workoutType == "" {
		workoutType = TypeStrength
	}

	template, err := handler.repo.CreateTemplate(ctx, name, workoutType)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			http.Error(w, "error, template name already taken", http.StatusConflict)
			return
		}
		log.Errorf("failed to create template [%s]: %s", name, err)
		http.Error(w, "error, failed to create template", http.StatusInternalServerError)
		return
	}

	log.Debugf("template %d [%s] created", template.ID, template.Name)
	http.Redirect(w, r, fmt.Sprintf("/templates/%d/edit", template.ID), http.StatusSeeOther)
}

// templateDetailResponse loads and serves a template with its exercises,
// redirecting to the template list when absent.
func (handler *TemplatesHandler) templateDetailResponse(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Redirect(w, r, "/templates", http.StatusSeeOther)
		return
	}

	detail, err := handler.repo.TemplateDetail(ctx, id)
	if errors.Is(err, ErrTemplateNotFound) {
		http.Redirect(w, r, "/templates", http.StatusSeeOther)
		return
	}
	if err != nil {
		log.Errorf("template detail view %d: %s", id, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	detailJson, err := json.Marshal(detail)
	if err != nil {
		log.Errorf("template detail view, marshal detail: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, detailJson, http.StatusOK)
}

func (handler *TemplatesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.get")
	defer span.End()
	handler.templateDetailResponse(ctx, w, r)
}

func (handler *TemplatesHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.edit")
	defer span.End()
	handler.templateDetailResponse(ctx, w, r)
}

func (handler *TemplatesHandler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.addExercise")
	defer span.End()

	templateID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, template id NaN", http.StatusBadRequest)
		return
	}

	backToEdit := fmt.Sprintf("/templates/%d/edit", templateID)

	name := strings.TrimSpace(r.FormValue("exercise_name"))
	if name == "" {
		http.Redirect(w, r, backToEdit, http.StatusSeeOther)
		return
	}

	targetSets := DefaultTargetSets
	if v, err := strconv.Atoi(r.FormValue("target_sets")); err == nil {
		targetSets = v
	}
	targetReps := DefaultTargetReps
	if v, err := strconv.Atoi(r.FormValue("target_reps")); err == nil {
		targetReps = v
	}
	targetWeight := float64(DefaultTargetWeight)
	if v, err := strconv.ParseFloat(r.FormValue("target_weight"), 64); err == nil {
		targetWeight = v
	}

	if _, err := handler.repo.AddTemplateExercise(ctx, templateID, name, targetSets, targetReps, targetWeight); err != nil {
		log.Errorf("failed to add exercise [%s] to template %d: %s", name, templateID, err)
		http.Error(w, "error, failed to add template exercise", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, backToEdit, http.StatusSeeOther)
}

func (handler *TemplatesHandler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.deleteExercise")
	defer span.End()

	vars := mux.Vars(r)
	templateID, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, template id NaN", http.StatusBadRequest)
		return
	}
	exerciseID, err := strconv.Atoi(vars["eid"])
	if err != nil {
		http.Error(w, "error, template exercise id NaN", http.StatusBadRequest)
		return
	}

	err = handler.repo.DeleteTemplateExercise(ctx, exerciseID)
	if err != nil && !errors.Is(err, ErrTemplateExerciseNotFound) {
		log.Errorf("failed to delete template exercise %d: %s", exerciseID, err)
		http.Error(w, "error, failed to delete template exercise", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/templates/%d/edit", templateID), http.StatusSeeOther)
}

func (handler *TemplatesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.templates.delete")
	defer span.End()

	templateID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, template id NaN", http.StatusBadRequest)
		return
	}

	err = handler.repo.DeleteTemplate(ctx, templateID)
	if err != nil && !errors.Is(err, ErrTemplateNotFound) {
		log.Errorf("failed to delete template %d: %s", templateID, err)
		http.Error(w, "error, failed to delete template", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/templates", http.StatusSeeOther)
}
