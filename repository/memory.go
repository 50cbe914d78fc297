package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"opengalaxy/apperr"
	"opengalaxy/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryRepository returns process-local stores with the same semantics as
// the Mongo ones. Records are copied on the way in and out.
func NewMemoryRepository() Repositories {
	return Repositories{
		Users:        &memUsers{items: map[primitive.ObjectID]model.User{}},
		Problems:     &memProblems{items: map[primitive.ObjectID]model.Problem{}},
		Solutions:    &memSolutions{items: map[primitive.ObjectID]model.Solution{}},
		Certificates: &memCertificates{items: map[string]model.Certificate{}},
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func hexSet(ids []string) map[primitive.ObjectID]struct{} {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, oid := range parseIDs(ids) {
		set[oid] = struct{}{}
	}
	return set
}

func sortNewestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

type memUsers struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]model.User
}

func cloneUser(u model.User) model.User {
	u.Badges = cloneStrings(u.Badges)
	u.LikedProblems = cloneStrings(u.LikedProblems)
	u.SavedProblems = cloneStrings(u.SavedProblems)
	return u
}

func (r *memUsers) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.GithubID == user.GithubID {
			return apperr.New(apperr.KindConflict, "user with GitHub ID %s already exists", user.GithubID)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.items[user.ID] = cloneUser(*user)
	return nil
}

func (r *memUsers) Save(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[user.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	r.items[user.ID] = cloneUser(*user)
	return nil
}

func (r *memUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	oid, err := parseID("user", id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[oid]
	if !ok {
		return nil, apperr.NotFound("user not found with ID: %s", id)
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *memUsers) FindByGithubID(_ context.Context, githubID string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.GithubID == githubID {
			u = cloneUser(u)
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user for GitHub ID not found with ID: %s", githubID)
}

func (r *memUsers) FindByIDs(_ context.Context, ids []string) ([]model.User, error) {
	want := hexSet(ids)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.User{}
	for oid := range want {
		if u, ok := r.items[oid]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *memUsers) FindAll(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

type memProblems struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]model.Problem
}

func cloneProblem(p model.Problem) model.Problem {
	p.Tags = cloneStrings(p.Tags)
	p.Likes = cloneStrings(p.Likes)
	p.SavedBy = cloneStrings(p.SavedBy)
	p.SolutionIDs = cloneStrings(p.SolutionIDs)
	return p
}

func problemCreatedAt(p model.Problem) time.Time { return p.CreatedAt }

func (r *memProblems) Create(_ context.Context, problem *model.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if problem.ID.IsZero() {
		problem.ID = primitive.NewObjectID()
	}
	r.items[problem.ID] = cloneProblem(*problem)
	return nil
}

func (r *memProblems) Save(_ context.Context, problem *model.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[problem.ID]; !ok {
		return apperr.NotFound("problem not found")
	}
	r.items[problem.ID] = cloneProblem(*problem)
	return nil
}

func (r *memProblems) FindByID(_ context.Context, id string) (*model.Problem, error) {
	oid, err := parseID("problem", id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[oid]
	if !ok {
		return nil, apperr.NotFound("problem not found with ID: %s", id)
	}
	p = cloneProblem(p)
	return &p, nil
}

func (r *memProblems) filter(keep func(model.Problem) bool) []model.Problem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Problem{}
	for _, p := range r.items {
		if keep(p) {
			out = append(out, cloneProblem(p))
		}
	}
	sortNewestFirst(out, problemCreatedAt)
	return out
}

func (r *memProblems) FindByIDs(_ context.Context, ids []string) ([]model.Problem, error) {
	want := hexSet(ids)
	return r.filter(func(p model.Problem) bool {
		_, ok := want[p.ID]
		return ok
	}), nil
}

func (r *memProblems) FindByPostedBy(_ context.Context, userID string) ([]model.Problem, error) {
	return r.filter(func(p model.Problem) bool { return p.PostedBy == userID }), nil
}

func (r *memProblems) FindAll(_ context.Context) ([]model.Problem, error) {
	return r.filter(func(model.Problem) bool { return true }), nil
}

func (r *memProblems) UpdateStatus(_ context.Context, id, status string) error {
	if status != model.ProblemStatusOpen && status != model.ProblemStatusSolved {
		return apperr.Invalid("invalid status: %s", status)
	}
	oid, err := parseID("problem", id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[oid]
	if !ok {
		return apperr.NotFound("problem not found with ID: %s", id)
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	r.items[oid] = p
	return nil
}

func (r *memProblems) Delete(_ context.Context, id string) error {
	oid, err := parseID("problem", id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[oid]; !ok {
		return apperr.NotFound("problem not found with ID: %s", id)
	}
	delete(r.items, oid)
	return nil
}

type memSolutions struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]model.Solution
}

func cloneSolution(s model.Solution) model.Solution {
	s.Upvotes = cloneStrings(s.Upvotes)
	return s
}

func (r *memSolutions) Create(_ context.Context, solution *model.Solution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if solution.ID.IsZero() {
		solution.ID = primitive.NewObjectID()
	}
	r.items[solution.ID] = cloneSolution(*solution)
	return nil
}

func (r *memSolutions) Save(_ context.Context, solution *model.Solution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[solution.ID]; !ok {
		return apperr.NotFound("solution not found")
	}
	r.items[solution.ID] = cloneSolution(*solution)
	return nil
}

func (r *memSolutions) FindByID(_ context.Context, id string) (*model.Solution, error) {
	oid, err := parseID("solution", id)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[oid]
	if !ok {
		return nil, apperr.NotFound("solution not found with ID: %s", id)
	}
	s = cloneSolution(s)
	return &s, nil
}

func (r *memSolutions) FindByProblemID(_ context.Context, problemID string) ([]model.Solution, error) {
	r.mu.RLock()
	out := []model.Solution{}
	for _, s := range r.items {
		if s.ProblemID == problemID {
			out = append(out, cloneSolution(s))
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsAccepted != b.IsAccepted {
			return a.IsAccepted
		}
		if a.UpvoteCount != b.UpvoteCount {
			return a.UpvoteCount > b.UpvoteCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, nil
}

func (r *memSolutions) FindBySubmittedBy(_ context.Context, userID string) ([]model.Solution, error) {
	r.mu.RLock()
	out := []model.Solution{}
	for _, s := range r.items {
		if s.SubmittedBy == userID {
			out = append(out, cloneSolution(s))
		}
	}
	r.mu.RUnlock()
	sortNewestFirst(out, func(s model.Solution) time.Time { return s.CreatedAt })
	return out, nil
}

func (r *memSolutions) UnacceptOthers(_ context.Context, problemID, keepID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for oid, s := range r.items {
		if s.ProblemID != problemID || !s.IsAccepted || oid.Hex() == keepID {
			continue
		}
		s.IsAccepted = false
		s.UpdatedAt = time.Now()
		r.items[oid] = s
		changed++
	}
	return changed, nil
}

func (r *memSolutions) Delete(_ context.Context, id string) error {
	oid, err := parseID("solution", id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[oid]; !ok {
		return apperr.NotFound("solution not found with ID: %s", id)
	}
	delete(r.items, oid)
	return nil
}

func (r *memSolutions) DeleteByProblemID(_ context.Context, problemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for oid, s := range r.items {
		if s.ProblemID == problemID {
			delete(r.items, oid)
		}
	}
	return nil
}

func (r *memSolutions) TallyBetween(_ context.Context, start, end time.Time) ([]model.SolutionTally, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	byUser := map[string]*model.SolutionTally{}
	for _, s := range r.items {
		if s.CreatedAt.Before(start) || s.CreatedAt.After(end) {
			continue
		}
		t, ok := byUser[s.SubmittedBy]
		if !ok {
			t = &model.SolutionTally{UserID: s.SubmittedBy}
			byUser[s.SubmittedBy] = t
		}
		t.SolutionCount++
		if s.IsAccepted {
			t.AcceptedCount++
		}
	}
	out := make([]model.SolutionTally, 0, len(byUser))
	for _, t := range byUser {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type memCertificates struct {
	mu    sync.RWMutex
	items map[string]model.Certificate
}

func cloneCertificate(c model.Certificate) model.Certificate {
	c.AllSkills = cloneStrings(c.AllSkills)
	return c
}

func (r *memCertificates) Create(_ context.Context, cert *model.Certificate) error {
	if cert.ID == "" {
		return apperr.Invalid("certificate ID is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[cert.ID]; ok {
		return apperr.New(apperr.KindConflict, "certificate %s already exists", cert.ID)
	}
	r.items[cert.ID] = cloneCertificate(*cert)
	return nil
}

func (r *memCertificates) FindByID(_ context.Context, id string) (*model.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, apperr.NotFound("certificate not found with ID: %s", id)
	}
	c = cloneCertificate(c)
	return &c, nil
}

func (r *memCertificates) FindActiveByUserID(_ context.Context, userID string) (*model.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.UserID == userID && c.IsActive {
			c = cloneCertificate(c)
			return &c, nil
		}
	}
	return nil, apperr.NotFound("active certificate for user not found with ID: %s", userID)
}

func (r *memCertificates) FindByUserID(_ context.Context, userID string) ([]model.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.Certificate{}
	for _, c := range r.items {
		if c.UserID == userID {
			out = append(out, cloneCertificate(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out, nil
}
