package handlers

import (
	"net/http"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/invitation"
)

// GetBookingHandler returns a booking to its organizer or one of its
// participants. Staff may read every booking.
func GetBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if !canSeeBooking(b, UserIDFromContext(r)) && !RoleFromContext(r).IsStaff() {
			writeError(w, invitation.Forbidden("you are not part of this booking"))
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func canSeeBooking(b *booking.Booking, userID string) bool {
	return b.UserID == userID || b.HasParticipant(userID)
}

// CreateBookingHandler books a field for the caller. Shared requests may land
// in an existing booking for the same slot.
func CreateBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req booking.CreateRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		b, err := svc.Create(r.Context(), UserIDFromContext(r), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func JoinBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Join(r.Context(), r.PathValue("id"), UserIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func CancelBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.Cancel(r.Context(), r.PathValue("id"), UserIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

type updatePaymentRequest struct {
	UserID string                `json:"user_id"`
	Status booking.PaymentStatus `json:"status" validate:"required,oneof=pending paid refunded"`
}

// UpdatePaymentHandler records a payment. Without user_id it updates the
// caller's own share.
func UpdatePaymentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePaymentRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		b, err := svc.UpdatePayment(r.Context(), r.PathValue("id"), UserIDFromContext(r), req.UserID,
			RoleFromContext(r).IsStaff(), req.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

// WaitingBookingsHandler lists shared bookings that still take players.
func WaitingBookingsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookings, err := svc.ListWaiting(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if bookings == nil {
			bookings = []*booking.Booking{}
		}
		writeJSON(w, http.StatusOK, bookings)
	}
}
