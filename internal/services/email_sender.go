package services

// EmailSender delivers plain-text mail. The reset workflow treats sends as
// best effort.
type EmailSender interface {
	Send(to string, subject string, body string) error
}
