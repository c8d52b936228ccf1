package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventEngagementModelTrained SSEEvent = "EngagementModelTrained"
	SSEEventEngagementModelEmpty   SSEEvent = "EngagementModelEmpty"
	SSEEventEngagementModelFailed  SSEEvent = "EngagementModelFailed"
	SSEEventInsightCreated         SSEEvent = "InsightCreated"
	SSEEventPostCreated            SSEEvent = "PostCreated"
	SSEEventPostScored             SSEEvent = "PostScored"
	SSEEventSocialAccountSynced    SSEEvent = "SocialAccountSynced"
	SSEEventPreferencesUpdated     SSEEvent = "PreferencesUpdated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel every stream of userID subscribes to.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
