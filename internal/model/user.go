package model

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleAdmin is the persisted role that unlocks administrative routes.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a document in the users collection. Fields the client submits
// beyond the known ones are kept in Extra and stored alongside them.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	FullName  string             `bson:"fullName"`
	Role      string             `bson:"role,omitempty"`
	Timestamp int64              `bson:"timestamp"`
	Extra     map[string]any     `bson:",inline"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// MarshalJSON flattens Extra into the top-level object.
func (u User) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(u.Extra)+5)
	for k, v := range u.Extra {
		doc[k] = v
	}
	if !u.ID.IsZero() {
		doc["_id"] = u.ID
	}
	doc["email"] = u.Email
	doc["fullName"] = u.FullName
	if u.Role != "" {
		doc["role"] = u.Role
	}
	doc["timestamp"] = u.Timestamp
	return json.Marshal(doc)
}

// UnmarshalJSON reads the known fields and keeps every other key in Extra.
// Known fields of the wrong type are left empty. _id is never read from input.
func (u *User) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*u = User{}
	u.Email, _ = doc["email"].(string)
	u.FullName, _ = doc["fullName"].(string)
	u.Role, _ = doc["role"].(string)
	if ts, ok := doc["timestamp"].(float64); ok {
		u.Timestamp = int64(ts)
	}

	for _, k := range []string{"_id", "email", "fullName", "role", "timestamp"} {
		delete(doc, k)
	}
	if len(doc) > 0 {
		u.Extra = doc
	}
	return nil
}

// RoleResponse is returned by the role lookup route.
type RoleResponse struct {
	Role string `json:"role"`
}

// RoleRequest is the optional body of the role update route.
type RoleRequest struct {
	Role string `json:"role"`
}
