package testutil

import "sync"

// Notification records one call to Notify.
type Notification struct {
	Channel string
	Title   string
	Body    string
}

// RecordingNotifier captures notifications for assertions. Safe for
// concurrent use.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

func (n *RecordingNotifier) Notify(channel, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{Channel: channel, Title: title, Body: body})
}

// Sent returns a copy of all recorded notifications.
func (n *RecordingNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}
