package handlers

import (
	"net/http"
	"time"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/event"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/metrics"
)

type createEventRequest struct {
	Name            string                    `json:"name" validate:"required,max=200"`
	Description     string                    `json:"description" validate:"max=2000"`
	Image           string                    `json:"image" validate:"omitempty,url"`
	FieldID         string                    `json:"field_id" validate:"required"`
	StartTime       time.Time                 `json:"start_time" validate:"required"`
	EndTime         time.Time                 `json:"end_time" validate:"required"`
	Deadline        *time.Time                `json:"deadline"`
	MinPlayers      int                       `json:"min_players" validate:"gte=0"`
	MaxPlayers      int                       `json:"max_players" validate:"gte=0"`
	PlayerLevel     invitation.PlayerLevel    `json:"player_level" validate:"omitempty,oneof=beginner intermediate advanced any"`
	PlayStyle       invitation.PlayStyle      `json:"play_style" validate:"omitempty,oneof=casual competitive any"`
	TeamPreference  invitation.TeamPreference `json:"team_preference" validate:"omitempty,oneof=random any male female mixed"`
	DiscountPercent *float64                  `json:"discount_percent"`
}

type updateEventRequest struct {
	Name           *string                    `json:"name" validate:"omitempty,max=200"`
	Description    *string                    `json:"description" validate:"omitempty,max=2000"`
	Image          *string                    `json:"image" validate:"omitempty,url"`
	PlayerLevel    *invitation.PlayerLevel    `json:"player_level" validate:"omitempty,oneof=beginner intermediate advanced any"`
	PlayStyle      *invitation.PlayStyle      `json:"play_style" validate:"omitempty,oneof=casual competitive any"`
	TeamPreference *invitation.TeamPreference `json:"team_preference" validate:"omitempty,oneof=random any male female mixed"`
	Deadline       *time.Time                 `json:"deadline"`
	MinPlayers     *int                       `json:"min_players"`
	MaxPlayers     *int                       `json:"max_players"`
}

type interestRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type conversionResponse struct {
	Invitation *invitation.Invitation `json:"invitation"`
	Booking    *booking.Booking       `json:"booking"`
}

type statusResponse struct {
	Event   *invitation.Invitation `json:"event"`
	From    invitation.Status      `json:"from"`
	To      invitation.Status      `json:"to"`
	Changed bool                   `json:"changed"`
}

func SearchEventsHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := filtersFromQuery(r)
		if err != nil {
			writeError(w, err)
			return
		}
		invs, err := svc.Search(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeList(w, invs)
	}
}

func AvailableEventsHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invs, err := svc.Available(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeList(w, invs)
	}
}

func MyEventsHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invs, err := svc.Mine(r.Context(), UserIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeList(w, invs)
	}
}

func CreateEventHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}
		var req createEventRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		inv, err := svc.Create(r.Context(), UserIDFromContext(r), event.CreateRequest{
			Name:            req.Name,
			Description:     req.Description,
			Image:           req.Image,
			FieldID:         req.FieldID,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			Deadline:        req.Deadline,
			MinPlayers:      req.MinPlayers,
			MaxPlayers:      req.MaxPlayers,
			PlayerLevel:     req.PlayerLevel,
			PlayStyle:       req.PlayStyle,
			TeamPreference:  req.TeamPreference,
			DiscountPercent: req.DiscountPercent,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, inv)
	}
}

func GetEventHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func UpdateEventHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}
		var req updateEventRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		inv, err := svc.Update(r.Context(), r.PathValue("id"), UserIDFromContext(r), event.Patch{
			Name:           req.Name,
			Description:    req.Description,
			Image:          req.Image,
			PlayerLevel:    req.PlayerLevel,
			PlayStyle:      req.PlayStyle,
			TeamPreference: req.TeamPreference,
			Deadline:       req.Deadline,
			MinPlayers:     req.MinPlayers,
			MaxPlayers:     req.MaxPlayers,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func LeaveEventHandler(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.Leave(r.Context(), r.PathValue("id"), UserIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func CheckEventStatusHandler(svc *event.Service, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.CheckStatus(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if out.Changed {
			m.IncTransitions(string(invitation.KindEvent), string(out.To))
		}
		writeJSON(w, http.StatusOK, statusResponse{Event: out.Event, From: out.From, To: out.To, Changed: out.Changed})
	}
}

// Shared by events and matchmaking: both embed *invitation.Service.

func ShowInterestHandler(svc *invitation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req interestRequest
		if err := decodeOptional(r, &req); err != nil {
			writeError(w, err)
			return
		}
		inv, err := svc.ShowInterest(r.Context(), r.PathValue("id"), UserIDFromContext(r), req.Note)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func AcceptPlayerHandler(svc *invitation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.AcceptPlayer(r.Context(), r.PathValue("id"), UserIDFromContext(r), r.PathValue("playerId"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func RejectPlayerHandler(svc *invitation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.RejectPlayer(r.Context(), r.PathValue("id"), UserIDFromContext(r), r.PathValue("playerId"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func RemovePlayerHandler(svc *invitation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.RemovePlayer(r.Context(), r.PathValue("id"), UserIDFromContext(r), r.PathValue("playerId"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func CancelHandler(svc *invitation.Service, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.Cancel(r.Context(), r.PathValue("id"), UserIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		m.IncTransitions(string(inv.Kind), string(inv.Status))
		writeJSON(w, http.StatusOK, inv)
	}
}

func ConvertHandler(svc *invitation.Service, m metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, b, err := svc.Convert(r.Context(), r.PathValue("id"), UserIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		m.IncConversions(string(inv.Kind))
		m.IncTransitions(string(inv.Kind), string(inv.Status))
		writeJSON(w, http.StatusCreated, conversionResponse{Invitation: inv, Booking: b})
	}
}
