package resource

import "sync"

// NotificationKind is the severity of a notification.
type NotificationKind int

const (
	NotifySuccess NotificationKind = iota
	NotifyError
)

func (k NotificationKind) String() string {
	if k == NotifyError {
		return "error"
	}
	return "success"
}

// Notifier receives a message on every terminal state transition.
type Notifier interface {
	Notify(kind NotificationKind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind NotificationKind, message string)

func (f NotifierFunc) Notify(kind NotificationKind, message string) { f(kind, message) }

type nopNotifier struct{}

func (nopNotifier) Notify(NotificationKind, string) {}

// Notification is one recorded notification.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// NotificationQueue is a goroutine-safe Notifier that buffers notifications
// until drained.
type NotificationQueue struct {
	mu    sync.Mutex
	items []Notification
}

func (q *NotificationQueue) Notify(kind NotificationKind, message string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, Notification{Kind: kind, Message: message})
}

// Drain returns and clears the buffered notifications, oldest first.
func (q *NotificationQueue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
