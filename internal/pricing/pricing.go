// Package pricing computes session prices for fields rented by the hour.
// All amounts are whole currency units.
package pricing

import (
	"math"
	"time"
)

// DefaultDiscountPercent is the group discount applied to event matching
// sessions when the organizer does not choose one.
const DefaultDiscountPercent = 20

// Quote is the price of a session split between its players.
type Quote struct {
	Total     int64 `json:"total"`
	PerPerson int64 `json:"per_person"`
}

// DiscountedTotal returns rate * hours * (1 - discountPercent/100), unrounded.
func DiscountedTotal(ratePerHour int64, duration time.Duration, discountPercent float64) float64 {
	return float64(ratePerHour) * duration.Hours() * (1 - discountPercent/100)
}

// Round rounds an amount to the nearest whole unit, halves away from zero.
func Round(amount float64) int64 {
	return int64(math.Round(amount))
}

// Split divides amount evenly between people and rounds the share.
// A non-positive head count yields zero.
func Split(amount float64, people int) int64 {
	if people <= 0 {
		return 0
	}
	return Round(amount / float64(people))
}

// Estimate is the per-person price advertised when an event is created,
// assuming the session fills up to partySize players.
func Estimate(ratePerHour int64, duration time.Duration, discountPercent float64, partySize int) int64 {
	return Split(DiscountedTotal(ratePerHour, duration, discountPercent), partySize)
}

// For prices a session played by the given number of players.
func For(ratePerHour int64, duration time.Duration, discountPercent float64, players int) Quote {
	total := DiscountedTotal(ratePerHour, duration, discountPercent)
	return Quote{
		Total:     Round(total),
		PerPerson: Split(total, players),
	}
}
