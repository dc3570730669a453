package enrollment

import (
	"github.com/solux-cash/solux-backend/internal/application/enrollment/cmd"
	"github.com/solux-cash/solux-backend/internal/application/enrollment/wizard"
	domain "github.com/solux-cash/solux-backend/internal/domain/enrollment"
)

type App struct {
	CMD    Command
	Wizard *wizard.Service
}

type Command struct {
	Enroll       *cmd.EnrollHandler
	SimulateAuth *cmd.SimulateAuthorizationHandler
}

type Args struct {
	Issuing      cmd.IssuingService
	WizardRepo   wizard.Repo
	CodeIssuer   wizard.CodeIssuer
	CodeVerifier wizard.CodeVerifier

	FaceScan     domain.Scan
	DocumentScan domain.Scan
}

func NewApp(args Args) *App {
	enroll := cmd.NewEnrollHandler(cmd.EnrollHandlerArgs{
		Issuing: args.Issuing,
	})

	return &App{
		CMD: Command{
			Enroll: enroll,
			SimulateAuth: cmd.NewSimulateAuthorizationHandler(cmd.SimulateAuthorizationHandlerArgs{
				Issuing: args.Issuing,
			}),
		},
		Wizard: wizard.NewService(wizard.ServiceArgs{
			Repo:         args.WizardRepo,
			CodeIssuer:   args.CodeIssuer,
			CodeVerifier: args.CodeVerifier,
			Enroller:     enroll,
			FaceScan:     args.FaceScan,
			DocumentScan: args.DocumentScan,
		}),
	}
}
