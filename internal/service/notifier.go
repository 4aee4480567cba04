package service

// Notifier delivers a plain text message to a chat participant. The
// transport layer provides the implementation; services never talk to the
// chat API directly.
type Notifier interface {
	Notify(userID int64, text string) error
}
