package handlers

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/notifier"
	"github.com/mauv0809/fieldmatch/internal/pubsub"
)

// NotifyInvitationHandler receives Pub/Sub pushes published by the sweeper
// and delivers them through the notifier.
func NotifyInvitationHandler(n notifier.Notifier, pubsubClient pubsub.PubSubClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received notify invitation message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"`
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		isDryRun := IsDryRunFromContext(r)
		notification := notifier.Notification{}
		if err := pubsubClient.ProcessMessage(rawData, &notification); err != nil {
			// Acknowledge so Pub/Sub stops redelivering a payload that will never decode.
			log.Error("Dropping undecodable notification", "subscription", pubsubMsg.Subscription, "error", err)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := n.SendInvitationNotification(&notification, isDryRun); err != nil {
			log.Error("Failed to notify invitation", "invitationID", notification.InvitationID, "error", err)
			http.Error(w, "Failed to notify invitation", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
