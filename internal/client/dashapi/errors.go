package dashapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yungbote/pulseboard-backend/internal/validation"
)

// ErrNoModel is returned by EngagementModel when nothing has been trained yet.
var ErrNoModel = errors.New("no engagement model trained")

// RequestError is a non-2xx response from the API.
type RequestError struct {
	Status  int
	Code    string
	Message string
	Fields  []validation.FieldError
}

func (e *RequestError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("dashapi: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("dashapi: %d: %s", e.Status, e.Message)
}

// IsValidation reports whether the server rejected the document field by field.
func (e *RequestError) IsValidation() bool {
	return e.Status == http.StatusBadRequest && e.Code == "validation_failed"
}

// IsCode reports whether err is a RequestError carrying code.
func IsCode(err error, code string) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Code == code
}

func decodeRequestError(status int, body []byte) *RequestError {
	out := &RequestError{Status: status}
	var env struct {
		Error struct {
			Message string                  `json:"message"`
			Code    string                  `json:"code"`
			Fields  []validation.FieldError `json:"fields"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && (env.Error.Message != "" || env.Error.Code != "") {
		out.Code = env.Error.Code
		out.Message = env.Error.Message
		out.Fields = env.Error.Fields
		return out
	}
	out.Message = strings.TrimSpace(string(body))
	if out.Message == "" {
		out.Message = http.StatusText(status)
	}
	return out
}
