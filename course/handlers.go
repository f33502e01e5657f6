package course

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stackskills/platform/auth"
	"github.com/stackskills/platform/auth/token"
	apperrors "github.com/stackskills/platform/errors"
	"github.com/stackskills/platform/logger"
	"github.com/stackskills/platform/observability"
	"github.com/stackskills/platform/server"
	"github.com/stackskills/platform/server/middleware"
	"github.com/stackskills/platform/validation"
)

// CreateRequest is the course creation payload.
type CreateRequest struct {
	Title       string          `json:"title" validate:"required,min=3,max=200"`
	Description string          `json:"description" validate:"required,min=10"`
	Thumbnail   string          `json:"thumbnail" validate:"required,url"`
	Price       float64         `json:"price" validate:"gte=0"`
	Slug        string          `json:"slug" validate:"required,min=3,max=100"`
	Published   bool            `json:"published"`
	Lessons     []LessonRequest `json:"lessons" validate:"dive"`
}

// LessonRequest is one content item in a creation payload.
type LessonRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	Order       int    `json:"order"`
	Published   bool   `json:"published"`
}

// PublishRequest flips a course's published flag.
type PublishRequest struct {
	Published bool `json:"published"`
}

// Handler exposes the course catalog over HTTP.
type Handler struct {
	store   Store
	tokens  *token.Service
	metrics *observability.AuthMetrics
	log     *logger.Logger
}

// NewHandler creates the course HTTP handler. metrics may be nil.
func NewHandler(store Store, tokens *token.Service, metrics *observability.AuthMetrics, log *logger.Logger) *Handler {
	return &Handler{store: store, tokens: tokens, metrics: metrics, log: log.WithComponent("course")}
}

// RegisterRoutes mounts the catalog routes under /api. Reads are public and
// limited to published courses; writes require an ADMIN session.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	authMW := middleware.Authenticate(h.tokens, h.metrics)
	adminMW := middleware.RequireRole(auth.RoleAdmin)

	api := r.Group("/api")
	api.GET("/courses", h.List)
	api.GET("/courses/:slug", h.Get)

	admin := api.Group("/admin/courses", authMW, adminMW)
	admin.POST("", h.Create)
	admin.GET("", h.ListAll)
	admin.PATCH("/:slug/publish", h.Publish)
}

// Create handles POST /api/admin/courses.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid JSON in request body"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	course := &Course{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Price:       req.Price,
		Slug:        req.Slug,
		Published:   req.Published,
		CreatedAt:   time.Now(),
	}
	for i, l := range req.Lessons {
		order := l.Order
		if order == 0 {
			order = i + 1
		}
		course.Lessons = append(course.Lessons, Lesson{
			Title:       l.Title,
			Description: l.Description,
			ImageURL:    l.ImageURL,
			VideoURL:    l.VideoURL,
			Order:       order,
			Published:   l.Published,
		})
	}

	if err := h.store.Create(c.Request.Context(), course); err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			server.RespondWithError(c, apperrors.AlreadyExists("course"))
			return
		}
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	h.log.Info("Course created", logger.Fields("slug", course.Slug, "title", course.Title))
	server.RespondCreated(c, "Course created successfully", course)
}

// Get handles GET /api/courses/:slug. Unpublished courses are hidden.
func (h *Handler) Get(c *gin.Context) {
	course, err := h.store.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			server.RespondWithError(c, apperrors.NotFound("course"))
			return
		}
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	if !course.Published {
		server.RespondWithError(c, apperrors.NotFound("course"))
		return
	}
	server.RespondOK(c, "", course)
}

// List handles GET /api/courses: published courses only.
func (h *Handler) List(c *gin.Context) {
	h.list(c, true)
}

// ListAll handles GET /api/admin/courses: every course, published or not.
func (h *Handler) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *Handler) list(c *gin.Context, publishedOnly bool) {
	courses, err := h.store.List(c.Request.Context(), publishedOnly)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	server.RespondOK(c, "", courses)
}

// Publish handles PATCH /api/admin/courses/:slug/publish.
func (h *Handler) Publish(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid JSON in request body"))
		return
	}

	slug := c.Param("slug")
	if err := h.store.SetPublished(c.Request.Context(), slug, req.Published); err != nil {
		if errors.Is(err, ErrNotFound) {
			server.RespondWithError(c, apperrors.NotFound("course"))
			return
		}
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	h.log.Info("Course publish state changed", logger.Fields("slug", slug, "published", req.Published))
	server.RespondOK(c, "Course updated", nil)
}
