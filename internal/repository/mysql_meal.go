package repository

import (
	"context"
	"database/sql"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mealmafia/mealmafia-go/internal/model"
)

// MySQLMealRepository stores meals in a MySQL table. Ids are ObjectID hex
// strings generated by the server so they look the same as on Mongo.
type MySQLMealRepository struct {
	db *sql.DB
}

// NewMySQLMealRepository creates a new MySQLMealRepository.
func NewMySQLMealRepository(db *sql.DB) *MySQLMealRepository {
	return &MySQLMealRepository{db: db}
}

const selectMealColumns = `SELECT id, price, extra FROM meals`

// List returns all meals ordered by price.
func (r *MySQLMealRepository) List(ctx context.Context, order model.SortOrder) ([]model.Meal, error) {
	query := selectMealColumns + ` ORDER BY price DESC, created_at ASC`
	if order == model.SortAsc {
		query = selectMealColumns + ` ORDER BY price ASC, created_at ASC`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := []model.Meal{}
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		meals = append(meals, *m)
	}

	return meals, rows.Err()
}

// GetByID retrieves a meal by its hex id.
func (r *MySQLMealRepository) GetByID(ctx context.Context, id string) (*model.Meal, error) {
	if _, err := parseObjectID(id); err != nil {
		return nil, err
	}

	meal, err := scanMeal(r.db.QueryRowContext(ctx, selectMealColumns+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMealNotFound
		}
		return nil, err
	}
	return meal, nil
}

// Create inserts meal and sets the generated id on it.
func (r *MySQLMealRepository) Create(ctx context.Context, meal *model.Meal) (model.InsertResult, error) {
	extra, err := encodeExtra(meal.Extra)
	if err != nil {
		return model.InsertResult{}, err
	}

	oid := primitive.NewObjectID()
	_, err = r.db.ExecContext(ctx, `INSERT INTO meals (id, price, extra) VALUES (?, ?, ?)`,
		oid.Hex(), meal.Price, extra)
	if err != nil {
		return model.InsertResult{}, err
	}

	meal.ID = oid
	return model.InsertResult{Acknowledged: true, InsertedID: oid.Hex()}, nil
}

// Delete removes the meal with the given id, reporting zero for a missing one.
func (r *MySQLMealRepository) Delete(ctx context.Context, id string) (model.DeleteResult, error) {
	if _, err := parseObjectID(id); err != nil {
		return model.DeleteResult{}, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return model.DeleteResult{}, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return model.DeleteResult{}, err
	}

	return model.DeleteResult{Acknowledged: true, DeletedCount: deleted}, nil
}

func scanMeal(row rowScanner) (*model.Meal, error) {
	var (
		m     model.Meal
		id    string
		extra []byte
	)
	if err := row.Scan(&id, &m.Price, &extra); err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	m.ID = oid

	if m.Extra, err = decodeExtra(extra); err != nil {
		return nil, err
	}
	return &m, nil
}
