package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulseboard-backend/internal/domain/content"
	"github.com/yungbote/pulseboard-backend/internal/domain/social"
	"github.com/yungbote/pulseboard-backend/internal/http/response"
	"github.com/yungbote/pulseboard-backend/internal/services"
)

type PostHandler struct {
	posts     services.PostService
	analytics services.AnalyticsService
}

func NewPostHandler(posts services.PostService, analytics services.AnalyticsService) *PostHandler {
	return &PostHandler{posts: posts, analytics: analytics}
}

// GET /api/posts?startDate&endDate&platform&status&limit
func (h *PostHandler) List(c *gin.Context) {
	start, ok := queryTime(c, "startDate", false)
	if !ok {
		return
	}
	end, ok := queryTime(c, "endDate", true)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	q := services.PostQuery{
		Start:  start,
		End:    end,
		Status: content.PostStatus(c.Query("status")),
		Limit:  limit,
	}
	if p := c.Query("platform"); p != "" && p != "all" {
		q.Platform = social.Platform(p)
	}
	out, err := h.posts.List(c.Request.Context(), q)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": out})
}

// GET /api/posts/scheduled?limit
func (h *PostHandler) ListScheduled(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	out, err := h.posts.ListScheduled(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": out})
}

// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	p, err := h.posts.Create(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"post": p})
}

// GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"post": p})
}

// GET /api/posts/:id/analytics
func (h *PostHandler) Analytics(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rows, err := h.posts.Analytics(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"analytics": rows})
}

// POST /api/analytics
func (h *PostHandler) RecordAnalytics(c *gin.Context) {
	raw, ok := body(c)
	if !ok {
		return
	}
	row, err := h.analytics.Record(c.Request.Context(), raw)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"analytics": row})
}
