package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/notifier"
	"github.com/slack-go/slack"
)

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// parseFiltersText reads "key:value" pairs from the slash command text.
// Unknown keys are ignored. Example: "level:beginner style:casual".
func parseFiltersText(text string) invitation.Filters {
	var f invitation.Filters
	for _, part := range strings.Fields(strings.TrimSpace(text)) {
		key, value, ok := strings.Cut(part, ":")
		if !ok || value == "" {
			continue
		}
		switch strings.ToLower(key) {
		case "level":
			f.PlayerLevel = invitation.PlayerLevel(strings.ToLower(value))
		case "style":
			f.PlayStyle = invitation.PlayStyle(strings.ToLower(value))
		case "team":
			f.TeamPreference = invitation.TeamPreference(strings.ToLower(value))
		}
	}
	return f
}

// ListCommandHandler answers a slash command with the joinable invitations
// of one kind. Text filters narrow the list.
func ListCommandHandler(svc *invitation.Service, n notifier.Notifier, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		text := r.FormValue("text")
		log.Info("Received list command", "title", title, "user", r.FormValue("user_name"), "text", text)

		var (
			invs []*invitation.Invitation
			err  error
		)
		if strings.TrimSpace(text) == "" {
			invs, err = svc.Available(r.Context())
		} else {
			invs, err = svc.Search(r.Context(), parseFiltersText(text))
		}
		if err != nil {
			http.Error(w, "Failed to list invitations", http.StatusInternalServerError)
			log.Error("Failed to list invitations", "title", title, "error", err)
			return
		}

		msg, err := n.FormatInvitationList(invs, title)
		if err != nil {
			http.Error(w, "Failed to format invitation list", http.StatusInternalServerError)
			log.Error("Failed to format invitation list", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}
