package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mealmafia/mealmafia-go/internal/model"
)

// MealRepository handles meal persistence in the meals collection.
type MealRepository struct {
	coll *mongo.Collection
}

// NewMealRepository creates a new MealRepository.
func NewMealRepository(db *mongo.Database) *MealRepository {
	return &MealRepository{coll: db.Collection(mealsCollection)}
}

// List returns all meals ordered by price.
func (r *MealRepository) List(ctx context.Context, order model.SortOrder) ([]model.Meal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: int(order)}})

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	meals := []model.Meal{}
	if err := cur.All(ctx, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

// GetByID retrieves a meal by its hex id.
func (r *MealRepository) GetByID(ctx context.Context, id string) (*model.Meal, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	meal := &model.Meal{}
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(meal); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}

	return meal, nil
}

// Create inserts meal and sets the generated id on it.
func (r *MealRepository) Create(ctx context.Context, meal *model.Meal) (model.InsertResult, error) {
	res, err := r.coll.InsertOne(ctx, meal)
	if err != nil {
		return model.InsertResult{}, err
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		meal.ID = oid
	}
	return model.InsertResult{Acknowledged: true, InsertedID: meal.ID.Hex()}, nil
}

// Delete removes the meal with the given id. A missing meal is not an error;
// the result reports zero deleted documents.
func (r *MealRepository) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return model.DeleteResult{}, err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return model.DeleteResult{}, err
	}

	return model.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}
