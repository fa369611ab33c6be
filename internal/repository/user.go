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

// UserRepository handles user persistence in the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// UpsertByEmail inserts user if no document with its email exists and returns
// the stored document either way. The write is a single conditional upsert;
// a concurrent insert that wins the unique index is read back instead.
func (r *UserRepository) UpsertByEmail(ctx context.Context, user *model.User) (*model.User, error) {
	filter := bson.M{"email": user.Email}
	update := bson.M{"$setOnInsert": user}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	stored := &model.User{}
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(stored)
	if mongo.IsDuplicateKeyError(err) {
		err = r.coll.FindOne(ctx, filter).Decode(stored)
	}
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// List returns every user document.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}

	users := []model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetRole sets the role of the user with the given hex id.
func (r *UserRepository) SetRole(ctx context.Context, id, role string) (model.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return model.UpdateResult{}, err
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return model.UpdateResult{}, err
	}

	return updateResult(res), nil
}

func updateResult(res *mongo.UpdateResult) model.UpdateResult {
	out := model.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		out.UpsertedID = oid.Hex()
	}
	return out
}
