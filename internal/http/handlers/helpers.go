package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pulseboard-backend/internal/http/response"
)

// pathID parses the :id route param and writes a 400 when it is malformed.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("id must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// body reads the raw request body; decoding and validation belong to the
// services.
func body(c *gin.Context) ([]byte, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return nil, false
	}
	return raw, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", errors.New(name+" must be a non-negative integer"))
		return 0, false
	}
	return n, true
}

func queryBool(c *gin.Context, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(name))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// queryTime accepts RFC 3339 or a bare YYYY-MM-DD. A bare date used as an
// end bound covers the whole day.
func queryTime(c *gin.Context, name string, endOfDay bool) (*time.Time, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, true
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_query", errors.New(name+" must be an ISO-8601 date"))
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}
