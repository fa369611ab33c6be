package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mealmafia/mealmafia-go/internal/model"
)

// MySQLUserRepository stores users in a MySQL table keyed by email, with the
// free-form fields kept in a JSON column.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// insertIfAbsentQuery is a no-op on an existing email, so the first write wins.
const insertIfAbsentQuery = `
	INSERT INTO users (id, email, full_name, role, timestamp, extra)
	VALUES (?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE email = email`

const selectUserColumns = `SELECT id, email, full_name, role, timestamp, extra FROM users`

// UpsertByEmail inserts user unless its email is already stored, then returns
// the stored row.
func (r *MySQLUserRepository) UpsertByEmail(ctx context.Context, user *model.User) (*model.User, error) {
	extra, err := encodeExtra(user.Extra)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, insertIfAbsentQuery,
		primitive.NewObjectID().Hex(),
		user.Email,
		user.FullName,
		nullString(user.Role),
		user.Timestamp,
		extra,
	)
	if err != nil {
		return nil, err
	}

	return r.GetByEmail(ctx, user.Email)
}

// GetByEmail retrieves a user by their email address.
func (r *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, selectUserColumns+` WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns every user row.
func (r *MySQLUserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, selectUserColumns+` ORDER BY timestamp ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	return users, rows.Err()
}

// SetRole sets the role of the user with the given hex id.
func (r *MySQLUserRepository) SetRole(ctx context.Context, id, role string) (model.UpdateResult, error) {
	if _, err := parseObjectID(id); err != nil {
		return model.UpdateResult{}, err
	}

	var current sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT role FROM users WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UpdateResult{Acknowledged: true}, nil
	}
	if err != nil {
		return model.UpdateResult{}, err
	}

	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return model.UpdateResult{}, err
	}

	modified, err := result.RowsAffected()
	if err != nil {
		return model.UpdateResult{}, err
	}

	return model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u     model.User
		id    string
		role  sql.NullString
		extra []byte
	)
	if err := row.Scan(&id, &u.Email, &u.FullName, &role, &u.Timestamp, &extra); err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	u.ID = oid
	u.Role = role.String

	if u.Extra, err = decodeExtra(extra); err != nil {
		return nil, err
	}
	return &u, nil
}

func encodeExtra(extra map[string]any) (any, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	return json.Marshal(extra)
}

func decodeExtra(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var extra map[string]any
	if err := json.Unmarshal(data, &extra); err != nil {
		return nil, err
	}
	return extra, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
