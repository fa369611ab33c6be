package repository

import (
	"context"
	"maps"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mealmafia/mealmafia-go/internal/model"
)

// MemoryStore keeps users and meals in process memory. It backs local
// development (DB_DRIVER=memory) and the HTTP tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]model.User // by email
	meals map[primitive.ObjectID]model.Meal
	seq   []primitive.ObjectID // meal insertion order
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]model.User),
		meals: make(map[primitive.ObjectID]model.Meal),
	}
}

// Users returns the user side of the store.
func (s *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{s: s} }

// Meals returns the meal side of the store.
func (s *MemoryStore) Meals() *MemoryMealRepository { return &MemoryMealRepository{s: s} }

type MemoryUserRepository struct{ s *MemoryStore }

func (r *MemoryUserRepository) UpsertByEmail(_ context.Context, user *model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.users[user.Email]; ok {
		return cloneUser(existing), nil
	}

	stored := *cloneUser(*user)
	stored.ID = primitive.NewObjectID()
	r.s.users[user.Email] = stored
	return cloneUser(stored), nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, *cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Timestamp < users[j].Timestamp ||
			(users[i].Timestamp == users[j].Timestamp && users[i].Email < users[j].Email)
	})
	return users, nil
}

func (r *MemoryUserRepository) SetRole(_ context.Context, id, role string) (model.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return model.UpdateResult{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for email, u := range r.s.users {
		if u.ID != oid {
			continue
		}
		res := model.UpdateResult{Acknowledged: true, MatchedCount: 1}
		if u.Role != role {
			u.Role = role
			r.s.users[email] = u
			res.ModifiedCount = 1
		}
		return res, nil
	}
	return model.UpdateResult{Acknowledged: true}, nil
}

type MemoryMealRepository struct{ s *MemoryStore }

func (r *MemoryMealRepository) List(_ context.Context, order model.SortOrder) ([]model.Meal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	meals := make([]model.Meal, 0, len(r.s.seq))
	for _, id := range r.s.seq {
		meals = append(meals, *cloneMeal(r.s.meals[id]))
	}
	sort.SliceStable(meals, func(i, j int) bool {
		if order == model.SortAsc {
			return meals[i].Price < meals[j].Price
		}
		return meals[i].Price > meals[j].Price
	})
	return meals, nil
}

func (r *MemoryMealRepository) GetByID(_ context.Context, id string) (*model.Meal, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.meals[oid]
	if !ok {
		return nil, ErrMealNotFound
	}
	return cloneMeal(m), nil
}

func (r *MemoryMealRepository) Create(_ context.Context, meal *model.Meal) (model.InsertResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	meal.ID = primitive.NewObjectID()
	r.s.meals[meal.ID] = *cloneMeal(*meal)
	r.s.seq = append(r.s.seq, meal.ID)
	return model.InsertResult{Acknowledged: true, InsertedID: meal.ID.Hex()}, nil
}

func (r *MemoryMealRepository) Delete(_ context.Context, id string) (model.DeleteResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return model.DeleteResult{}, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.meals[oid]; !ok {
		return model.DeleteResult{Acknowledged: true}, nil
	}
	delete(r.s.meals, oid)
	for i, seqID := range r.s.seq {
		if seqID == oid {
			r.s.seq = append(r.s.seq[:i], r.s.seq[i+1:]...)
			break
		}
	}
	return model.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// Extra maps are copied shallowly so callers cannot mutate stored documents
// through the top-level map.
func cloneUser(u model.User) *model.User {
	u.Extra = maps.Clone(u.Extra)
	return &u
}

func cloneMeal(m model.Meal) *model.Meal {
	m.Extra = maps.Clone(m.Extra)
	return &m
}
