package models

import (
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Movie is a row in the movies collection. Genre is a snapshot taken when the
// movie was written; renaming the genre later does not touch it.
type Movie struct {
	ID              primitive.ObjectID `json:"_id"             bson:"_id,omitempty"`
	Title           string             `json:"title"           bson:"title"`
	Genre           Genre              `json:"genre"           bson:"genre"`
	NumberInStock   int                `json:"numberInStock"   bson:"numberInStock"`
	IsAvailable     bool               `json:"isAvailable"     bson:"isAvailable"`
	DailyRentalRate float64            `json:"dailyRentalRate" bson:"dailyRentalRate"`
}

// SetStock updates the stock and the availability flag derived from it.
func (m *Movie) SetStock(n int) {
	m.NumberInStock = n
	m.IsAvailable = n > 0
}

// MovieRequest is the JSON body for POST/PUT /api/movies.
type MovieRequest struct {
	Title           string   `json:"title"           validate:"required,min=3,max=255"`
	GenreID         string   `json:"genreId"         validate:"required,objectid"`
	NumberInStock   *float64 `json:"numberInStock"   validate:"required,gte=0,lte=255"`
	DailyRentalRate *float64 `json:"dailyRentalRate" validate:"required,gte=0,lte=255"`
}

// Normalize trims the title before validation.
func (r *MovieRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// Movie builds the record described by the request around a genre snapshot.
// Fractional stock is rounded to the nearest whole copy.
func (r MovieRequest) Movie(genre Genre) Movie {
	m := Movie{
		Title:           r.Title,
		Genre:           genre,
		DailyRentalRate: *r.DailyRentalRate,
	}
	m.SetStock(int(math.Round(*r.NumberInStock)))
	return m
}
