package workouts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ Repo = (*repoMock)(nil)

// repoMock is an in-memory Repo used by handler tests.
type repoMock struct {
	mutex sync.Mutex

	Workouts          map[int]*Workout
	Exercises         map[int]*Exercise
	Sets              map[int]*Set
	Templates         map[int]*Template
	TemplateExercises map[int]*TemplateExercise

	nextID int
}

func newRepoMock() *repoMock {
	return &repoMock{
		Workouts:          make(map[int]*Workout),
		Exercises:         make(map[int]*Exercise),
		Sets:              make(map[int]*Set),
		Templates:         make(map[int]*Template),
		TemplateExercises: make(map[int]*TemplateExercise),
	}
}

func (r *repoMock) newID() int {
	r.nextID++
	return r.nextID
}

func (r *repoMock) StartWorkout(_ context.Context, workoutType string, date time.Time) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w := &Workout{
		ID:        r.newID(),
		Type:      workoutType,
		Status:    StatusInProgress,
		Date:      date,
		CreatedAt: time.Now(),
	}
	r.Workouts[w.ID] = w
	return w, nil
}

func (r *repoMock) StartWorkoutFromTemplate(_ context.Context, templateID int, date time.Time) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	t, ok := r.Templates[templateID]
	if !ok {
		return nil, ErrTemplateNotFound
	}

	w := &Workout{
		ID:         r.newID(),
		Type:       t.Type,
		Status:     StatusInProgress,
		Date:       date,
		TemplateID: &t.ID,
		CreatedAt:  time.Now(),
	}
	r.Workouts[w.ID] = w

	for _, te := range r.TemplateExercises {
		if te.TemplateID != templateID {
			continue
		}
		sets, reps, weight := te.TargetSets, te.TargetReps, te.TargetWeight
		e := &Exercise{
			ID:           r.newID(),
			WorkoutID:    w.ID,
			Name:         te.Name,
			OrderNum:     te.OrderNum,
			TargetSets:   &sets,
			TargetReps:   &reps,
			TargetWeight: &weight,
			CreatedAt:    time.Now(),
		}
		r.Exercises[e.ID] = e
	}
	return w, nil
}

func (r *repoMock) Workout(_ context.Context, id int) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.Workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}
	return w, nil
}

func (r *repoMock) WorkoutDetail(_ context.Context, id int) (*WorkoutDetail, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.Workouts[id]
	if !ok {
		return nil, ErrWorkoutNotFound
	}

	detail := &WorkoutDetail{
		Workout:   *w,
		Exercises: make([]ExerciseWithSets, 0),
	}
	if w.IsRun() {
		return detail, nil
	}

	var exercises []*Exercise
	for _, e := range r.Exercises {
		if e.WorkoutID == id {
			exercises = append(exercises, e)
		}
	}
	sort.Slice(exercises, func(i, j int) bool {
		return exercises[i].OrderNum < exercises[j].OrderNum
	})

	for _, e := range exercises {
		var sets []Set
		for _, s := range r.Sets {
			if s.ExerciseID == e.ID {
				sets = append(sets, *s)
			}
		}
		sort.Slice(sets, func(i, j int) bool {
			return sets[i].SetNumber < sets[j].SetNumber
		})
		if sets == nil {
			sets = make([]Set, 0)
		}
		detail.Exercises = append(detail.Exercises, ExerciseWithSets{Exercise: *e, Sets: sets})
	}
	return detail, nil
}

func (r *repoMock) InProgress(_ context.Context) (*Workout, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var latest *Workout
	for _, w := range r.Workouts {
		if w.Status != StatusInProgress {
			continue
		}
		if latest == nil || w.CreatedAt.After(latest.CreatedAt) || (w.CreatedAt.Equal(latest.CreatedAt) && w.ID > latest.ID) {
			latest = w
		}
	}
	if latest == nil {
		return nil, ErrWorkoutNotFound
	}
	return latest, nil
}

func (r *repoMock) ListCompleted(_ context.Context, limit int) ([]WorkoutSummary, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var completed []*Workout
	for _, w := range r.Workouts {
		if w.Status == StatusCompleted {
			completed = append(completed, w)
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		if !completed[i].Date.Equal(completed[j].Date) {
			return completed[i].Date.After(completed[j].Date)
		}
		ci, cj := completed[i].CompletedAt, completed[j].CompletedAt
		if ci != nil && cj != nil {
			return ci.After(*cj)
		}
		return completed[i].ID > completed[j].ID
	})

	summaries := make([]WorkoutSummary, 0)
	for _, w := range completed {
		if len(summaries) == limit {
			break
		}
		var exerciseCount, setCount int
		for _, e := range r.Exercises {
			if e.WorkoutID != w.ID {
				continue
			}
			exerciseCount++
			for _, s := range r.Sets {
				if s.ExerciseID == e.ID {
					setCount++
				}
			}
		}
		summaries = append(summaries, WorkoutSummary{
			Workout:       *w,
			ExerciseCount: exerciseCount,
			SetCount:      setCount,
		})
	}
	return summaries, nil
}

func (r *repoMock) AddExercise(_ context.Context, workoutID int, name string) (*Exercise, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	maxOrder := 0
	for _, e := range r.Exercises {
		if e.WorkoutID == workoutID && e.OrderNum > maxOrder {
			maxOrder = e.OrderNum
		}
	}

	e := &Exercise{
		ID:        r.newID(),
		WorkoutID: workoutID,
		Name:      name,
		OrderNum:  maxOrder + 1,
		CreatedAt: time.Now(),
	}
	r.Exercises[e.ID] = e
	return e, nil
}

func (r *repoMock) AddSet(_ context.Context, exerciseID, reps int, weight float64) (*Set, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	maxSet := 0
	for _, s := range r.Sets {
		if s.ExerciseID == exerciseID && s.SetNumber > maxSet {
			maxSet = s.SetNumber
		}
	}

	s := &Set{
		ID:         r.newID(),
		ExerciseID: exerciseID,
		SetNumber:  maxSet + 1,
		Reps:       reps,
		Weight:     weight,
		CreatedAt:  time.Now(),
	}
	r.Sets[s.ID] = s
	return s, nil
}

func (r *repoMock) DeleteSet(_ context.Context, setID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Sets[setID]; !ok {
		return ErrSetNotFound
	}
	delete(r.Sets, setID)
	return nil
}

func (r *repoMock) DeleteExercise(_ context.Context, exerciseID int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Exercises[exerciseID]; !ok {
		return ErrExerciseNotFound
	}
	for id, s := range r.Sets {
		if s.ExerciseID == exerciseID {
			delete(r.Sets, id)
		}
	}
	delete(r.Exercises, exerciseID)
	return nil
}

func (r *repoMock) UpdateRun(_ context.Context, workoutID int, durationMinutes *int, distanceKM *float64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.Workouts[workoutID]
	if !ok {
		return ErrWorkoutNotFound
	}
	w.DurationMinutes = durationMinutes
	w.DistanceKM = distanceKM
	return nil
}

func (r *repoMock) FinishWorkout(_ context.Context, workoutID int, notes string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.Workouts[workoutID]
	if !ok {
		return ErrWorkoutNotFound
	}
	now := time.Now()
	w.Status = StatusCompleted
	w.Notes = notes
	w.CompletedAt = &now
	return nil
}

func (r *repoMock) CancelWorkout(_ context.Context, workoutID int) error {
	return r.deleteWithStatus(workoutID, StatusInProgress)
}

func (r *repoMock) DeleteWorkout(_ context.Context, workoutID int) error {
	return r.deleteWithStatus(workoutID, StatusCompleted)
}

func (r *repoMock) deleteWithStatus(workoutID int, status string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	w, ok := r.Workouts[workoutID]
	if !ok || w.Status != status {
		return nil
	}
	for eid, e := range r.Exercises {
		if e.WorkoutID != workoutID {
			continue
		}
		for sid, s := range r.Sets {
			if s.ExerciseID == e.ID {
				delete(r.Sets, sid)
			}
		}
		delete(r.Exercises, eid)
	}
	delete(r.Workouts, workoutID)
	return nil
}

func (r *repoMock) CreateTemplate(_ context.Context, name, workoutType string) (*Template, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	t := &Template{
		ID:        r.newID(),
		Name:      name,
		Type:      workoutType,
		CreatedAt: time.Now(),
	}
	r.Templates[t.ID] = t
	return t, nil
}

func (r *repoMock) Template(_ context.Context, id int) (*Template, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	t, ok := r.Templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

func (r *repoMock) TemplateDetail(_ context.Context, id int) (*TemplateDetail, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	t, ok := r.Templates[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}

	exercises := make([]TemplateExercise, 0)
	for _, te := range r.TemplateExercises {
		if te.TemplateID == id {
			exercises = append(exercises, *te)
		}
	}
	sort.Slice(exercises, func(i, j int) bool {
		return exercises[i].OrderNum < exercises[j].OrderNum
	})

	return &TemplateDetail{
		Template:  *t,
		Exercises: exercises,
	}, nil
}

func (r *repoMock) ListTemplates(_ context.Context) ([]TemplateSummary, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var templates []*Template
	for _, t := range r.Templates {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool {
		if !templates[i].CreatedAt.Equal(templates[j].CreatedAt) {
			return templates[i].CreatedAt.After(templates[j].CreatedAt)
		}
		return templates[i].ID > templates[j].ID
	})

	summaries := make([]TemplateSummary, 0)
	for _, t := range templates {
		exerciseCount := 0
		for _, te := range r.TemplateExercises {
			if te.TemplateID == t.ID {
				exerciseCount++
			}
		}
		summaries = append(summaries, TemplateSummary{
			Template:      *t,
			ExerciseCount: exerciseCount,
		})
	}
	return summaries, nil
}

func (r *repoMock) AddTemplateExercise(_ context.Context, templateID int, name string, targetSets, targetReps int, targetWeight float64) (*TemplateExercise, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	maxOrder := 0
	for _, te := range r.TemplateExercises {
		if te.TemplateID == templateID && te.OrderNum > maxOrder {
			maxOrder = te.OrderNum
		}
	}

	te := &TemplateExercise{
		ID:           r.newID(),
		TemplateID:   templateID,
		Name:         name,
		OrderNum:     maxOrder + 1,
		TargetSets:   targetSets,
		TargetReps:   targetReps,
		TargetWeight: targetWeight,
	}
	r.TemplateExercises[te.ID] = te
	return te, nil
}

func (r *repoMock) DeleteTemplateExercise(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.TemplateExercises[id]; !ok {
		return ErrTemplateExerciseNotFound
	}
	delete(r.TemplateExercises, id)
	return nil
}

func (r *repoMock) DeleteTemplate(_ context.Context, id int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.Templates[id]; !ok {
		return ErrTemplateNotFound
	}
	for teID, te := range r.TemplateExercises {
		if te.TemplateID == id {
			delete(r.TemplateExercises, teID)
		}
	}
	for _, w := range r.Workouts {
		if w.TemplateID != nil && *w.TemplateID == id {
			w.TemplateID = nil
		}
	}
	delete(r.Templates, id)
	return nil
}
