package service

import (
	"context"
	"errors"

	"github.com/mealmafia/mealmafia-go/internal/model"
	"github.com/mealmafia/mealmafia-go/internal/repository"
)

// MealStore is the persistence the meal service needs.
type MealStore interface {
	List(ctx context.Context, order model.SortOrder) ([]model.Meal, error)
	GetByID(ctx context.Context, id string) (*model.Meal, error)
	Create(ctx context.Context, meal *model.Meal) (model.InsertResult, error)
	Delete(ctx context.Context, id string) (model.DeleteResult, error)
}

// MealService handles meal business logic.
type MealService struct {
	store MealStore
}

// NewMealService creates a new MealService.
func NewMealService(store MealStore) *MealService {
	return &MealService{store: store}
}

// List returns all meals sorted by price in the given order.
func (s *MealService) List(ctx context.Context, order model.SortOrder) ([]model.Meal, error) {
	meals, err := s.store.List(ctx, order)
	if err != nil {
		return nil, storageError(err)
	}
	return meals, nil
}

// Get returns a single meal.
func (s *MealService) Get(ctx context.Context, id string) (*model.Meal, error) {
	meal, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapMealError(err)
	}
	return meal, nil
}

// Create inserts the meal as submitted.
func (s *MealService) Create(ctx context.Context, meal model.Meal) (model.InsertResult, error) {
	res, err := s.store.Create(ctx, &meal)
	if err != nil {
		return model.InsertResult{}, storageError(err)
	}
	return res, nil
}

// Delete removes a meal. Deleting an unknown id succeeds with a zero count.
func (s *MealService) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	res, err := s.store.Delete(ctx, id)
	if err != nil {
		return model.DeleteResult{}, mapMealError(err)
	}
	return res, nil
}

func mapMealError(err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return ErrInvalidID
	case errors.Is(err, repository.ErrMealNotFound):
		return ErrMealNotFound
	default:
		return storageError(err)
	}
}
