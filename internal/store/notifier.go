package store

import "go.uber.org/zap"

type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notice is a user-facing message about the outcome of a store operation.
type Notice struct {
	Level   Level
	Title   string
	Message string
	Err     error
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

// LogNotifier writes notices to a zap logger.
type LogNotifier struct {
	log *zap.SugaredLogger
}

func NewLogNotifier(log *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(notice Notice) {
	if notice.Level == LevelError {
		n.log.Warnw(notice.Title, "message", notice.Message, "error", notice.Err)
		return
	}
	n.log.Infow(notice.Title, "message", notice.Message)
}
