package verification

import (
	"net/http"

	"github.com/solux-cash/solux-backend/pkg/errorx"
)

var (
	ErrEmailRequired = &errorx.I18nError{
		MessageKey: "email_required",
		Code:       errorx.CodeInvalid,
		HTTPCode:   http.StatusBadRequest,
	}
	ErrEmailInvalid = &errorx.I18nError{
		MessageKey: "email_invalid",
		Code:       errorx.CodeInvalid,
		HTTPCode:   http.StatusBadRequest,
	}
	ErrCodeFormat = &errorx.I18nError{
		MessageKey: "code_format",
		Code:       errorx.CodeInvalid,
		HTTPCode:   http.StatusBadRequest,
	}
	ErrNoCodeIssued = &errorx.I18nError{
		MessageKey: "no_code_issued",
		Code:       errorx.CodeNoCodeIssued,
		HTTPCode:   http.StatusBadRequest,
	}
	ErrCodeExpired = &errorx.I18nError{
		MessageKey: "code_expired",
		Code:       errorx.CodeCodeExpired,
		HTTPCode:   http.StatusBadRequest,
	}
	ErrCodeMismatch = &errorx.I18nError{
		MessageKey: "code_mismatch",
		Code:       errorx.CodeCodeMismatch,
		HTTPCode:   http.StatusBadRequest,
	}
	ErrMailDispatchFailed = &errorx.I18nError{
		MessageKey: "mail_dispatch_failed",
		Code:       errorx.CodeMailDispatchFailed,
		HTTPCode:   http.StatusBadGateway,
	}
)
