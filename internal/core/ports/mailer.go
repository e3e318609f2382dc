package ports

import "context"

// Mailer delivers templated mail. Implementations render the named template
// with vars and send the result to the recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, template string, vars map[string]any) error
}

// MailDispatcher accepts mail for asynchronous delivery. Enqueue never
// blocks the caller on SMTP round-trips.
type MailDispatcher interface {
	Enqueue(msg MailMessage)
}

// MailMessage is a unit of outbound mail handed to the dispatcher.
type MailMessage struct {
	To       string
	Subject  string
	Template string
	Vars     map[string]any
}
