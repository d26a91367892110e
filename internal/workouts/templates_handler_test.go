package workouts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesHandler_HandleCreate(t *testing.T) {
	repo, router := testRouterSetup(t)

	rr := doPostForm(t, router, "/templates/new", url.Values{
		"name":         {"Push Day"},
		"workout_type": {TypeStrength},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/templates/1/edit", rr.Header().Get("Location"))

	template := repo.Templates[1]
	require.NotNil(t, template)
	assert.Equal(t, "Push Day", template.Name)
	assert.Equal(t, TypeStrength, template.Type)

	// empty name is a no-op back to the form
	rr = doPostForm(t, router, "/templates/new", url.Values{
		"name": {"  "},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/templates/new", rr.Header().Get("Location"))
	assert.Len(t, repo.Templates, 1)

	// type defaults to strength when the form omits it
	rr = doPostForm(t, router, "/templates/new", url.Values{
		"name": {"Quick Day"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, TypeStrength, repo.Templates[2].Type)
}

type uniqueViolationRepo struct {
	*repoMock
}

func (r *uniqueViolationRepo) CreateTemplate(_ context.Context, _, _ string) (*Template, error) {
	return nil, &pgconn.PgError{Code: "23505"}
}

func TestTemplatesHandler_HandleCreate_NameTaken(t *testing.T) {
	repo := &uniqueViolationRepo{repoMock: newRepoMock()}
	router := mux.NewRouter()
	NewTemplatesHandler(repo).SetupRoutes(router)

	rr := doPostForm(t, router, "/templates/new", url.Values{
		"name": {"Push Day"},
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestTemplatesHandler_HandleList(t *testing.T) {
	repo, router := testRouterSetup(t)
	ctx := context.Background()

	rr := doGet(t, router, "/templates")
	require.Equal(t, http.StatusOK, rr.Code)

	var list TemplatesListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Empty(t, list.Templates)

	template, err := repo.CreateTemplate(ctx, "Leg Day", TypeStrength)
	require.NoError(t, err)
	_, err = repo.AddTemplateExercise(ctx, template.ID, "Squat", 3, 10, 0)
	require.NoError(t, err)

	rr = doGet(t, router, "/templates")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Templates, 1)
	assert.Equal(t, "Leg Day", list.Templates[0].Name)
	assert.Equal(t, 1, list.Templates[0].ExerciseCount)
}

func TestTemplatesHandler_HandleGetAndEdit(t *testing.T) {
	repo, router := testRouterSetup(t)
	ctx := context.Background()

	// absent template: back to the list
	rr := doGet(t, router, "/templates/55")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/templates", rr.Header().Get("Location"))

	template, err := repo.CreateTemplate(ctx, "Pull Day", TypeStrength)
	require.NoError(t, err)
	_, err = repo.AddTemplateExercise(ctx, template.ID, "Row", 3, 10, 50)
	require.NoError(t, err)

	for _, path := range []string{"/templates/1", "/templates/1/edit"} {
		rr = doGet(t, router, path)
		require.Equal(t, http.StatusOK, rr.Code, path)

		var detail TemplateDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
		assert.Equal(t, "Pull Day", detail.Name)
		require.Len(t, detail.Exercises, 1)
		assert.Equal(t, "Row", detail.Exercises[0].Name)
	}
}

func TestTemplatesHandler_HandleAddExercise(t *testing.T) {
	repo, router := testRouterSetup(t)
	ctx := context.Background()

	template, err := repo.CreateTemplate(ctx, "Push Day", TypeStrength)
	require.NoError(t, err)

	rr := doPostForm(t, router, "/templates/1/add_exercise", url.Values{
		"exercise_name": {"Bench"},
		"target_sets":   {"4"},
		"target_reps":   {"8"},
		"target_weight": {"135"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/templates/1/edit", rr.Header().Get("Location"))

	// omitted targets fall back to the defaults
	rr = doPostForm(t, router, "/templates/1/add_exercise", url.Values{
		"exercise_name": {"OHP"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	// empty name is a no-op
	rr = doPostForm(t, router, "/templates/1/add_exercise", url.Values{
		"exercise_name": {" "},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	detail, err := repo.TemplateDetail(ctx, template.ID)
	require.NoError(t, err)
	require.Len(t, detail.Exercises, 2)

	bench := detail.Exercises[0]
	assert.Equal(t, "Bench", bench.Name)
	assert.Equal(t, 4, bench.TargetSets)
	assert.Equal(t, 8, bench.TargetReps)
	assert.Equal(t, 135.0, bench.TargetWeight)

	ohp := detail.Exercises[1]
	assert.Equal(t, "OHP", ohp.Name)
	assert.Equal(t, DefaultTargetSets, ohp.TargetSets)
	assert.Equal(t, DefaultTargetReps, ohp.TargetReps)
	assert.Equal(t, float64(DefaultTargetWeight), ohp.TargetWeight)
}

func TestTemplatesHandler_HandleDeleteExercise(t *testing.T) {
	repo, router := testRouterSetup(t)
	ctx := context.Background()

	template, err := repo.CreateTemplate(ctx, "Push Day", TypeStrength)
	require.NoError(t, err)
	te, err := repo.AddTemplateExercise(ctx, template.ID, "Bench", 3, 8, 135)
	require.NoError(t, err)

	rr := doPostForm(t, router, "/templates/1/delete_exercise/2", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/templates/1/edit", rr.Header().Get("Location"))
	assert.NotContains(t, repo.TemplateExercises, te.ID)

	// repeated delete still redirects
	rr = doPostForm(t, router, "/templates/1/delete_exercise/2", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestTemplatesHandler_HandleDelete(t *testing.T) {
	repo, router := testRouterSetup(t)
	ctx := context.Background()

	template, err := repo.CreateTemplate(ctx, "Push Day", TypeStrength)
	require.NoError(t, err)
	_, err = repo.AddTemplateExercise(ctx, template.ID, "Bench", 3, 8, 135)
	require.NoError(t, err)
	w, err := repo.StartWorkoutFromTemplate(ctx, template.ID, time.Now())
	require.NoError(t, err)

	rr := doPostForm(t, router, "/templates/1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/templates", rr.Header().Get("Location"))
	assert.Empty(t, repo.Templates)
	assert.Empty(t, repo.TemplateExercises)

	// the started workout survives without the template reference
	gotten, err := repo.Workout(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, gotten.TemplateID)

	// absent template still redirects
	rr = doPostForm(t, router, "/templates/1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rr.Code)
}
