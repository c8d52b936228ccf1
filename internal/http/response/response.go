package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/engagement"
	"github.com/yungbote/pulseboard-backend/internal/platform/apierr"
	"github.com/yungbote/pulseboard-backend/internal/services"
	"github.com/yungbote/pulseboard-backend/internal/validation"
)

type APIError struct {
	Message string                  `json:"message"`
	Code    string                  `json:"code,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ValidationObserver is notified of every rejected document.
type ValidationObserver func(entity string)

var onValidationFailure ValidationObserver

// SetValidationObserver installs fn; nil disables it.
func SetValidationObserver(fn ValidationObserver) { onValidationFailure = fn }

// CodeKey is the gin context key holding the outcome code of an error or
// empty response. Successful responses leave it unset.
const CodeKey = "response_code"

// CodeEmpty marks a 204 produced for an empty result.
const CodeEmpty = "empty"

// Code returns the outcome code recorded for c, or "".
func Code(c *gin.Context) string { return c.GetString(CodeKey) }

func RespondError(c *gin.Context, status int, code string, err error) {
	c.Set(CodeKey, code)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr maps a service error onto the wire. Empty results become 204;
// 5xx causes are not echoed to the caller.
func RespondErr(c *gin.Context, err error) {
	if errors.Is(err, engagement.ErrInsufficientData) || errors.Is(err, services.ErrNoModel) {
		c.Set(CodeKey, CodeEmpty)
		c.Status(http.StatusNoContent)
		return
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		c.Set(CodeKey, "validation_failed")
		if onValidationFailure != nil {
			onValidationFailure(verr.Entity)
		}
		c.JSON(http.StatusBadRequest, ErrorEnvelope{
			Error: APIError{
				Message: verr.Error(),
				Code:    "validation_failed",
				Fields:  verr.Fields,
			},
		})
		return
	}
	status, code := apierr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, code, errors.New("internal server error"))
		return
	}
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
