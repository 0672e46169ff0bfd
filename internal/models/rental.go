package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerSnapshot is the copy of a customer embedded in a rental.
type CustomerSnapshot struct {
	ID     primitive.ObjectID `json:"_id"    bson:"_id"`
	Name   string             `json:"name"   bson:"name"`
	IsGold bool               `json:"isGold" bson:"isGold"`
	Phone  string             `json:"phone"  bson:"phone"`
}

// MovieSnapshot is the copy of a movie embedded in a rental.
type MovieSnapshot struct {
	ID              primitive.ObjectID `json:"_id"             bson:"_id"`
	Title           string             `json:"title"           bson:"title"`
	DailyRentalRate float64            `json:"dailyRentalRate" bson:"dailyRentalRate"`
}

// Rental is a row in the rentals collection. DateReturned and RentalFee are
// either both nil (the movie is still out) or both set.
type Rental struct {
	ID           primitive.ObjectID `json:"_id"                    bson:"_id,omitempty"`
	Customer     CustomerSnapshot   `json:"customer"               bson:"customer"`
	Movie        MovieSnapshot      `json:"movie"                  bson:"movie"`
	DateOut      time.Time          `json:"dateOut"                bson:"dateOut"`
	DateReturned *time.Time         `json:"dateReturned,omitempty" bson:"dateReturned"`
	RentalFee    *float64           `json:"rentalFee,omitempty"    bson:"rentalFee"`
}

// NewRental snapshots the customer and movie into an open rental.
func NewRental(c Customer, m Movie, dateOut time.Time) Rental {
	return Rental{
		Customer: CustomerSnapshot{ID: c.ID, Name: c.Name, IsGold: c.IsGold, Phone: c.Phone},
		Movie:    MovieSnapshot{ID: m.ID, Title: m.Title, DailyRentalRate: m.DailyRentalRate},
		DateOut:  dateOut,
	}
}

// IsOpen reports whether the movie has not been returned yet.
func (r Rental) IsOpen() bool {
	return r.DateReturned == nil
}

// RentalRequest is the JSON body for POST /api/rentals and POST /api/returns.
type RentalRequest struct {
	CustomerID string `json:"customerId" validate:"required,objectid"`
	MovieID    string `json:"movieId"    validate:"required,objectid"`
}
