package enrollment

import (
	"net/http"

	"github.com/solux-cash/solux-backend/pkg/errorx"
)

var (
	ErrStepMismatch = &errorx.I18nError{
		MessageKey: "wizard_step_mismatch",
		Code:       errorx.CodeInvalidTransition,
		HTTPCode:   http.StatusConflict,
	}
	ErrWizardCompleted = &errorx.I18nError{
		MessageKey: "wizard_completed",
		Code:       errorx.CodeInvalidTransition,
		HTTPCode:   http.StatusConflict,
	}
	ErrEnrollmentInFlight = &errorx.I18nError{
		MessageKey: "enrollment_in_flight",
		Code:       errorx.CodeConflict,
		HTTPCode:   http.StatusConflict,
	}
	ErrCameraPermissionDenied = &errorx.I18nError{
		MessageKey: "camera_permission_denied",
		Code:       errorx.CodePermissionDenied,
		HTTPCode:   http.StatusForbidden,
	}
	ErrProfileIncomplete = &errorx.I18nError{
		MessageKey: "profile_incomplete",
		Code:       errorx.CodeValidationFailed,
		HTTPCode:   http.StatusBadRequest,
	}
	ErrAccountCreationFailed = &errorx.I18nError{
		MessageKey: "account_creation_failed",
		Code:       errorx.CodeUpstreamError,
		HTTPCode:   http.StatusBadGateway,
	}
	ErrCardCreationFailed = &errorx.I18nError{
		MessageKey: "card_creation_failed",
		Code:       errorx.CodeUpstreamError,
		HTTPCode:   http.StatusBadGateway,
	}
)
