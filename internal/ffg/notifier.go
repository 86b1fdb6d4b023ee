package ffg

// Level grades a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a human-readable outcome, shown by the front end as a toast.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier receives notifications as a side channel to returned errors.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
