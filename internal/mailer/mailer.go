package mailer

import "context"

// Message is one outbound transactional email.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer defines the interface for sending transactional email.
type Mailer interface {
	Name() string
	Send(ctx context.Context, msg *Message) error
}
