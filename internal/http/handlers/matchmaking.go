package handlers

import (
	"net/http"
	"time"

	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/matchmaking"
)

type createMatchmakingRequest struct {
	FieldID        string                    `json:"field_id" validate:"required"`
	Description    string                    `json:"description" validate:"max=2000"`
	StartTime      time.Time                 `json:"start_time" validate:"required"`
	EndTime        time.Time                 `json:"end_time" validate:"required"`
	Deadline       *time.Time                `json:"deadline"`
	AvailableSlots int                       `json:"available_slots" validate:"required"`
	PlayerLevel    invitation.PlayerLevel    `json:"player_level" validate:"omitempty,oneof=beginner intermediate advanced any"`
	PlayStyle      invitation.PlayStyle      `json:"play_style" validate:"omitempty,oneof=casual competitive any"`
	TeamPreference invitation.TeamPreference `json:"team_preference" validate:"omitempty,oneof=random any male female mixed"`
}

type updateMatchmakingRequest struct {
	Description    *string                    `json:"description" validate:"omitempty,max=2000"`
	Deadline       *time.Time                 `json:"deadline"`
	PlayerLevel    *invitation.PlayerLevel    `json:"player_level" validate:"omitempty,oneof=beginner intermediate advanced any"`
	PlayStyle      *invitation.PlayStyle      `json:"play_style" validate:"omitempty,oneof=casual competitive any"`
	TeamPreference *invitation.TeamPreference `json:"team_preference" validate:"omitempty,oneof=random any male female mixed"`
}

func SearchMatchmakingHandler(svc *matchmaking.Service) http.HandlerFunc {
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

func AvailableMatchmakingHandler(svc *matchmaking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invs, err := svc.Available(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeList(w, invs)
	}
}

func MyMatchmakingHandler(svc *matchmaking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invs, err := svc.Mine(r.Context(), UserIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeList(w, invs)
	}
}

func CreateMatchmakingHandler(svc *matchmaking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMatchmakingRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		inv, err := svc.Create(r.Context(), UserIDFromContext(r), matchmaking.CreateRequest{
			FieldID:        req.FieldID,
			Description:    req.Description,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Deadline:       req.Deadline,
			AvailableSlots: req.AvailableSlots,
			PlayerLevel:    req.PlayerLevel,
			PlayStyle:      req.PlayStyle,
			TeamPreference: req.TeamPreference,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, inv)
	}
}

func GetMatchmakingHandler(svc *matchmaking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func UpdateMatchmakingHandler(svc *matchmaking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateMatchmakingRequest
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		inv, err := svc.Update(r.Context(), r.PathValue("id"), UserIDFromContext(r), matchmaking.Patch{
			Description:    req.Description,
			Deadline:       req.Deadline,
			PlayerLevel:    req.PlayerLevel,
			PlayStyle:      req.PlayStyle,
			TeamPreference: req.TeamPreference,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func JoinAsRepresentativeHandler(svc *matchmaking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := svc.JoinAsRepresentative(r.Context(), r.PathValue("id"), UserIDFromContext(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}
