package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/metrics"
	"github.com/mauv0809/fieldmatch/internal/notifier"
	"github.com/slack-go/slack"
)

const timeLayout = "Monday 02 Jan, 15:04"

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	location  *time.Location
}

// NewNotifier creates a new Notifier.
// Without a token messages are only logged.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	if token == "" {
		log.Warn("Slack token not set, notifications will only be logged")
		return NewNotifierWithAPI(nil, channelID, metrics)
	}
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		loc = time.UTC
	}
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		location:  loc,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.api == nil {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendInvitationNotification posts the message for n's template.
func (s *Notifier) SendInvitationNotification(n *notifier.Notification, dryRun bool) error {
	msg, err := s.formatNotification(n)
	if err != nil {
		return err
	}
	_, _, err = s.sendMessage(msg, dryRun)
	return err
}

// FormatInvitationList formats a list of open invitations for a slash command response.
func (s *Notifier) FormatInvitationList(invs []*invitation.Invitation, title string) (any, error) {
	return s.formatInvitationList(invs, title), nil
}

func (s *Notifier) formatNotification(n *notifier.Notification) (slack.Message, error) {
	switch n.Template {
	case notifier.TemplateConfirmed:
		return s.formatConfirmed(n), nil
	case notifier.TemplateCancelled:
		return s.formatCancelled(n), nil
	case notifier.TemplateWarning:
		return s.formatWarning(n), nil
	}
	return slack.Message{}, fmt.Errorf("unknown notification template %q", n.Template)
}

func (s *Notifier) formatConfirmed(n *notifier.Notification) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("✅ %s is confirmed!", n.Title()), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	details := s.details(n)
	details += fmt.Sprintf("\nPlayers: %d", n.Players)
	if n.EstimatedPrice > 0 {
		details += fmt.Sprintf("\nEstimated price: %d", n.EstimatedPrice)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", details, true, false), nil, nil))

	return slack.NewBlockMessage(append(blocks, recipientsBlock(n)...)...)
}

func (s *Notifier) formatCancelled(n *notifier.Notification) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("❌ %s was cancelled", n.Title()), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	reason := fmt.Sprintf("Not enough players joined before the deadline (%d of %d).", n.Players, n.MinPlayers)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", reason+"\n"+s.details(n), true, false), nil, nil))

	return slack.NewBlockMessage(append(blocks, recipientsBlock(n)...)...)
}

func (s *Notifier) formatWarning(n *notifier.Notification) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("⏰ %s closes soon", n.Title()), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	text := fmt.Sprintf("Only %s left to join. %d of %d players so far.\n%s",
		n.TimeLeft, n.Players, n.MinPlayers, s.details(n))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil))

	return slack.NewBlockMessage(append(blocks, recipientsBlock(n)...)...)
}

func (s *Notifier) details(n *notifier.Notification) string {
	field := n.FieldName
	if n.FieldLocation != "" {
		field = fmt.Sprintf("%s (%s)", n.FieldName, n.FieldLocation)
	}
	return fmt.Sprintf("Field: %s\nTime: %s - %s",
		field,
		n.StartTime.In(s.location).Format(timeLayout),
		n.EndTime.In(s.location).Format("15:04"),
	)
}

func recipientsBlock(n *notifier.Notification) []slack.Block {
	if len(n.Recipients) == 0 {
		return nil
	}
	text := "Sent to: " + strings.Join(n.Recipients, ", ")
	return []slack.Block{slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", text, false, false))}
}

// formatInvitationList creates a Slack message listing invitations that still take players.
func (s *Notifier) formatInvitationList(invs []*invitation.Invitation, title string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", title, true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(invs) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Nothing open right now. Why not start something?", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, inv := range invs {
		name := inv.Name
		if name == "" {
			name = inv.Description
		}
		if name == "" {
			name = string(inv.Kind)
		}
		text := fmt.Sprintf("%s\n> %s | Level: %s | Style: %s | Slots left: %d\n> Join before %s",
			name,
			inv.StartTime.In(s.location).Format(timeLayout),
			inv.PlayerLevel,
			inv.PlayStyle,
			inv.AvailableSlots,
			inv.Deadline.In(s.location).Format(timeLayout),
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil))
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", "ID: "+inv.ID, false, false)))
	}

	return slack.NewBlockMessage(blocks...)
}
