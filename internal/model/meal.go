package model

import (
	"encoding/json"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrPriceNotNumber = errors.New("price must be a number")

// SortOrder selects the price ordering of a meal listing.
type SortOrder int

const (
	SortDesc SortOrder = -1
	SortAsc  SortOrder = 1
)

// ParseSortOrder maps the sort query parameter. Only "asc" sorts ascending.
func ParseSortOrder(s string) SortOrder {
	if s == "asc" {
		return SortAsc
	}
	return SortDesc
}

// Meal is a document in the meals collection. Only price is interpreted by
// the server; everything else is stored as submitted.
type Meal struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Price float64            `bson:"price"`
	Extra map[string]any     `bson:",inline"`
}

func (m Meal) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		doc[k] = v
	}
	if !m.ID.IsZero() {
		doc["_id"] = m.ID
	}
	doc["price"] = m.Price
	return json.Marshal(doc)
}

func (m *Meal) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*m = Meal{}
	if raw, ok := doc["price"]; ok && raw != nil {
		price, ok := raw.(float64)
		if !ok {
			return ErrPriceNotNumber
		}
		m.Price = price
	}

	delete(doc, "_id")
	delete(doc, "price")
	if len(doc) > 0 {
		m.Extra = doc
	}
	return nil
}
