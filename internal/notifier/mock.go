package notifier

import (
	"sync"

	"github.com/mauv0809/fieldmatch/internal/invitation"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendInvitationNotificationFunc func(n *Notification, dryRun bool) error
	FormatInvitationListFunc       func(invs []*invitation.Invitation, title string) (any, error)

	// Call records
	SendInvitationNotificationCalls []SendCall
	FormatInvitationListCalls       []FormatCall
}

// SendCall holds the arguments for a call to SendInvitationNotification.
type SendCall struct {
	Notification *Notification
	DryRun       bool
}

// FormatCall holds the arguments for a call to FormatInvitationList.
type FormatCall struct {
	Invitations []*invitation.Invitation
	Title       string
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendInvitationNotificationCalls = nil
	m.FormatInvitationListCalls = nil
}

func (m *Mock) SendInvitationNotification(n *Notification, dryRun bool) error {
	m.mu.Lock()
	m.SendInvitationNotificationCalls = append(m.SendInvitationNotificationCalls, SendCall{Notification: n, DryRun: dryRun})
	m.mu.Unlock()
	if m.SendInvitationNotificationFunc != nil {
		return m.SendInvitationNotificationFunc(n, dryRun)
	}
	return nil
}

func (m *Mock) FormatInvitationList(invs []*invitation.Invitation, title string) (any, error) {
	m.mu.Lock()
	m.FormatInvitationListCalls = append(m.FormatInvitationListCalls, FormatCall{Invitations: invs, Title: title})
	m.mu.Unlock()
	if m.FormatInvitationListFunc != nil {
		return m.FormatInvitationListFunc(invs, title)
	}
	return "formatted_invitation_list", nil
}

// Sent returns a copy of the notifications sent so far.
func (m *Mock) Sent() []*Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Notification, 0, len(m.SendInvitationNotificationCalls))
	for _, c := range m.SendInvitationNotificationCalls {
		out = append(out, c.Notification)
	}
	return out
}
