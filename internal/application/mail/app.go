package mail

import (
	mailevent "github.com/solux-cash/solux-backend/internal/application/mail/event"
)

type App struct {
	Event Event
}

type Event struct {
	EnrollmentCompleted *mailevent.EnrollmentCompletedHandler
}

type Args struct {
	Mailsender mailevent.MailSender
}

func NewApp(args Args) *App {
	return &App{
		Event: Event{
			EnrollmentCompleted: mailevent.NewEnrollmentCompletedHandler(mailevent.EnrollmentCompletedHandlerArgs{
				Mailsender: args.Mailsender,
			}),
		},
	}
}
