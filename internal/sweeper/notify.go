package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/notifier"
	"github.com/mauv0809/fieldmatch/internal/pubsub"
)

// notify builds the notification for inv and hands it to Pub/Sub when a
// client is configured, or to the notifier directly.
func (s *Sweeper) notify(ctx context.Context, tmpl notifier.Template, inv *invitation.Invitation, now time.Time, dryRun bool) error {
	n := s.buildNotification(ctx, tmpl, inv, now)
	if s.pubsub != nil && !dryRun {
		if err := s.pubsub.SendMessage(pubsub.EventNotifyInvitation, n); err != nil {
			return fmt.Errorf("failed to publish notification: %w", err)
		}
		return nil
	}
	return s.notifier.SendInvitationNotification(n, dryRun)
}

func (s *Sweeper) buildNotification(ctx context.Context, tmpl notifier.Template, inv *invitation.Invitation, now time.Time) *notifier.Notification {
	n := &notifier.Notification{
		Template:       tmpl,
		Kind:           inv.Kind,
		InvitationID:   inv.ID,
		Name:           inv.Name,
		Description:    inv.Description,
		FieldName:      inv.FieldID,
		StartTime:      inv.StartTime,
		EndTime:        inv.EndTime,
		Deadline:       inv.Deadline,
		Players:        inv.AcceptedCount() + 1,
		MinPlayers:     inv.MinPlayers,
		MaxPlayers:     inv.MaxPlayers,
		EstimatedPrice: inv.EstimatedPrice,
	}
	if tmpl == notifier.TemplateWarning {
		n.TimeLeft = FormatTimeLeft(inv.Deadline.Sub(now))
	}

	if field, err := s.facility.GetField(ctx, inv.FieldID); err != nil {
		log.Warn("Could not load field for notification", "fieldID", inv.FieldID, "error", err)
	} else {
		n.FieldName = field.Name
		n.FieldLocation = field.Location
	}

	ids := append([]string{inv.CreatedBy}, inv.AcceptedIDs()...)
	users, err := s.facility.GetUsers(ctx, ids)
	if err != nil {
		log.Warn("Could not load recipients for notification", "invitationID", inv.ID, "error", err)
		return n
	}
	for _, u := range users {
		if u.Email != "" {
			n.Recipients = append(n.Recipients, u.Email)
		}
	}
	return n
}

// FormatTimeLeft renders d as "2h 5m", or "45 min" below an hour.
func FormatTimeLeft(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
