package mails

// Payload is one outbound email. HTML and Text may both be set; the sender
// forwards whichever the provider supports.
type Payload struct {
	To      string
	Subject string
	Text    string
	HTML    string
}
