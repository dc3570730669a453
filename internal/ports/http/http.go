package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	enrollmentapp "github.com/solux-cash/solux-backend/internal/application/enrollment"
	verificationapp "github.com/solux-cash/solux-backend/internal/application/verification"
	authhttp "github.com/solux-cash/solux-backend/internal/ports/http/auth"
	enrollmenthttp "github.com/solux-cash/solux-backend/internal/ports/http/enrollment"
	"github.com/solux-cash/solux-backend/pkg/httpx"
)

type Port struct {
	auth              *authhttp.HTTP
	enrollment        *enrollmenthttp.HTTP
	issuingConfigured bool
}

type Args struct {
	VerificationApp *verificationapp.App
	EnrollmentApp   *enrollmentapp.App
	Errhandler      *httpx.ErrorHandler

	// IssuingConfigured is surfaced on the health endpoint so the client can
	// tell a sandbox without credentials apart from a broken one.
	IssuingConfigured bool
}

func NewPort(args Args) *Port {
	return &Port{
		issuingConfigured: args.IssuingConfigured,
		auth: authhttp.NewHTTP(authhttp.Args{
			App:        args.VerificationApp,
			Errhandler: args.Errhandler,
		}),
		enrollment: enrollmenthttp.NewHTTP(enrollmenthttp.Args{
			App:        args.EnrollmentApp,
			Errhandler: args.Errhandler,
		}),
	}
}

func (p *Port) Route(r chi.Router) chi.Router {
	if r == nil {
		r = chi.NewRouter()
	}

	r.Get("/api/health", p.Health)

	p.auth.Route(r)
	p.enrollment.Route(r)

	return r
}

func (p *Port) Health(w http.ResponseWriter, r *http.Request) {
	httpx.Success(w, r, http.StatusOK, httpx.Envelope{
		"status":             "ok",
		"issuing_configured": p.issuingConfigured,
	})
}
