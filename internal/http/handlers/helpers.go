package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/mauv0809/fieldmatch/internal/invitation"
)

// ContextKey is a custom type to avoid key collisions in context.
type ContextKey string

const (
	DryRunKey ContextKey = "dryRun"
	UserIDKey ContextKey = "userID"
	RoleKey   ContextKey = "role"
)

// IsDryRunFromContext is a helper to safely retrieve the dry_run flag from the request context.
func IsDryRunFromContext(r *http.Request) bool {
	dryRun, ok := r.Context().Value(DryRunKey).(bool)
	return ok && dryRun
}

// UserIDFromContext returns the caller set by the identity middleware.
func UserIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}

// RoleFromContext returns the caller's role, defaulting to a plain user.
func RoleFromContext(r *http.Request) facility.Role {
	role, ok := r.Context().Value(RoleKey).(facility.Role)
	if !ok || role == "" {
		return facility.RoleUser
	}
	return role
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, invitation.ErrConflict), errors.Is(err, invitation.ErrCapacityExceeded),
		errors.Is(err, booking.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, invitation.ErrValidation), errors.Is(err, booking.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, invitation.ErrNotFound), errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, invitation.ErrForbidden), errors.Is(err, booking.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		msg = "internal error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Error: &errorBody{Code: status, Message: msg}}); err != nil {
		log.Error("Failed to write error response", "error", err)
	}
}

// decodeOptional is decode for endpoints whose body may be empty.
func decodeOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}
	return decode(r, dst)
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invitation.Validation("invalid request body: %v", err)
	}
	if err := validate.StructCtx(r.Context(), dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return invitation.Validation("%s is invalid (%s)", verrs[0].Field(), verrs[0].Tag())
		}
		return invitation.Validation("validation failed: %v", err)
	}
	return nil
}

// requireStaff rejects callers without an organizing role.
func requireStaff(w http.ResponseWriter, r *http.Request) bool {
	if !RoleFromContext(r).IsStaff() {
		writeError(w, invitation.Forbidden("this action requires a staff role"))
		return false
	}
	return true
}

// StaffOnly rejects callers without a staff role before h runs.
func StaffOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStaff(w, r) {
			return
		}
		h(w, r)
	}
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, invitation.Validation("%s must be an RFC 3339 time", key)
	}
	return &t, nil
}

// filtersFromQuery reads the search parameters shared by events and matchmaking.
func filtersFromQuery(r *http.Request) (invitation.Filters, error) {
	q := r.URL.Query()
	f := invitation.Filters{
		PlayerLevel:    invitation.PlayerLevel(q.Get("player_level")),
		PlayStyle:      invitation.PlayStyle(q.Get("play_style")),
		TeamPreference: invitation.TeamPreference(q.Get("team_preference")),
	}
	if raw := q.Get("min_slots"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, invitation.Validation("min_slots must be a non-negative number")
		}
		f.MinSlots = n
	}
	var err error
	if f.StartFrom, err = queryTime(r, "start_from"); err != nil {
		return f, err
	}
	if f.StartTo, err = queryTime(r, "start_to"); err != nil {
		return f, err
	}
	return f, nil
}

// listResponse is the body of every list endpoint.
type listResponse struct {
	Items []*invitation.Invitation `json:"items"`
	Count int                      `json:"count"`
}

func writeList(w http.ResponseWriter, invs []*invitation.Invitation) {
	if invs == nil {
		invs = []*invitation.Invitation{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: invs, Count: len(invs)})
}
