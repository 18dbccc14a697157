package editor

import "log/slog"

// LogNotifier writes notifications to a structured logger. It stands in
// for toast popups when the model runs headless.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}

func (n LogNotifier) Success(msg string) {
	n.logger().Info(msg, slog.String("kind", "success"))
}

func (n LogNotifier) Error(msg string) {
	n.logger().Error(msg, slog.String("kind", "error"))
}
