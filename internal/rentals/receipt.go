package rentals

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fseda/Vidly/internal/models"
)

// Receipt is the document stored for every processed return.
type Receipt struct {
	RentalID        string    `json:"rentalId"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	MovieTitle      string    `json:"movieTitle"`
	DateOut         time.Time `json:"dateOut"`
	DateReturned    time.Time `json:"dateReturned"`
	DaysCharged     int       `json:"daysCharged"`
	DailyRentalRate float64   `json:"dailyRentalRate"`
	RentalFee       float64   `json:"rentalFee"`
}

func newReceipt(r models.Rental) Receipt {
	rc := Receipt{
		RentalID:        r.ID.Hex(),
		CustomerName:    r.Customer.Name,
		CustomerPhone:   r.Customer.Phone,
		MovieTitle:      r.Movie.Title,
		DateOut:         r.DateOut,
		DailyRentalRate: r.Movie.DailyRentalRate,
	}
	if r.DateReturned != nil {
		rc.DateReturned = *r.DateReturned
		rc.DaysCharged = int(math.Max(1, math.Ceil(r.DateReturned.Sub(r.DateOut).Hours()/24)))
	}
	if r.RentalFee != nil {
		rc.RentalFee = *r.RentalFee
	}
	return rc
}

func receiptKey(id primitive.ObjectID) string {
	return "receipts/" + id.Hex() + ".json"
}
