package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is a row in the customers collection.
type Customer struct {
	ID     primitive.ObjectID `json:"_id"    bson:"_id,omitempty"`
	Name   string             `json:"name"   bson:"name"`
	IsGold bool               `json:"isGold" bson:"isGold"`
	Phone  string             `json:"phone"  bson:"phone"`
}

// CustomerRequest is the JSON body for POST/PUT /api/customers.
// IsGold is a pointer so an omitted flag can default to false while a
// non-boolean value still fails decoding.
type CustomerRequest struct {
	Name   string `json:"name"   validate:"required,min=3,max=255"`
	IsGold *bool  `json:"isGold"`
	Phone  string `json:"phone"  validate:"required,min=5,max=50"`
}

func (r *CustomerRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
}

// Customer builds the record described by the request.
func (r CustomerRequest) Customer() Customer {
	c := Customer{Name: r.Name, Phone: r.Phone}
	if r.IsGold != nil {
		c.IsGold = *r.IsGold
	}
	return c
}
