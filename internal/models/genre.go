package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Genre is a row in the genres collection. Movies embed a copy of it.
type Genre struct {
	ID   primitive.ObjectID `json:"_id"  bson:"_id,omitempty"`
	Name string             `json:"name" bson:"name"`
}

// GenreRequest is the JSON body for POST/PUT /api/genres.
type GenreRequest struct {
	Name string `json:"name" validate:"required,min=5,max=50"`
}

// Normalize trims the name so the length bounds apply to what is stored.
func (r *GenreRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}
