package verification

import (
	"github.com/solux-cash/solux-backend/internal/application/verification/cmd"
	"github.com/solux-cash/solux-backend/internal/application/verification/query"
)

type App struct {
	CMD   Command
	Query Query
}

type Command struct {
	IssueCode  *cmd.IssueCodeHandler
	VerifyCode *cmd.VerifyCodeHandler
}

type Query struct {
	GetCode *query.GetVerificationCodeHandler
}

type Args struct {
	Repo   cmd.Repo
	Mailer cmd.MailSender
}

func NewApp(args Args) *App {
	return &App{
		CMD: Command{
			IssueCode: cmd.NewIssueCodeHandler(cmd.IssueCodeHandlerArgs{
				Repo:   args.Repo,
				Mailer: args.Mailer,
			}),
			VerifyCode: cmd.NewVerifyCodeHandler(cmd.VerifyCodeHandlerArgs{
				Repo: args.Repo,
			}),
		},
		Query: Query{
			GetCode: query.NewGetVerificationCodeHandler(query.GetVerificationCodeHandlerArgs{
				Repo: args.Repo,
			}),
		},
	}
}
