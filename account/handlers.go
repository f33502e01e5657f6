package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stackskills/platform/auth"
	"github.com/stackskills/platform/auth/authctx"
	"github.com/stackskills/platform/auth/ratelimit"
	"github.com/stackskills/platform/auth/token"
	apperrors "github.com/stackskills/platform/errors"
	"github.com/stackskills/platform/observability"
	"github.com/stackskills/platform/server"
	"github.com/stackskills/platform/server/middleware"
	"github.com/stackskills/platform/validation"
)

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50,person_name"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Phone    string `json:"phone" validate:"required,min=10,max=15,phone"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// AdminRegisterRequest adds the shared admin registration token.
type AdminRegisterRequest struct {
	RegisterRequest
	AdminToken string `json:"admin_token" validate:"required"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// VerifyEmailRequest carries the 6-digit verification code.
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

// Handler exposes the account flows over HTTP and manages session cookies.
type Handler struct {
	svc        *Service
	tokens     *token.Service
	limiter    *ratelimit.Limiter
	metrics    *observability.AuthMetrics
	production bool
}

// NewHandler creates the account HTTP handler. production controls the
// Secure flag on session cookies. metrics may be nil.
func NewHandler(svc *Service, tokens *token.Service, limiter *ratelimit.Limiter,
	metrics *observability.AuthMetrics, production bool) *Handler {
	return &Handler{svc: svc, tokens: tokens, limiter: limiter, metrics: metrics, production: production}
}

// RegisterRoutes mounts the account routes under /api. The unauthenticated
// credential endpoints each carry a per-client-IP throttle in front of the
// finer-grained limiting inside the service, so hammering clients are
// rejected before any request parsing or hashing work.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	authMW := middleware.Authenticate(h.tokens, h.metrics)
	adminMW := middleware.RequireRole(auth.RoleAdmin)
	throttle := func(route string) gin.HandlerFunc {
		return middleware.RateLimit(h.limiter, middleware.ByClientIP("http:"+route))
	}

	api := r.Group("/api")

	ag := api.Group("/auth")
	ag.POST("/register", throttle("register"), h.Register)
	ag.POST("/login", throttle("login"), h.Login)
	ag.POST("/refresh", throttle("refresh"), h.Refresh)
	ag.POST("/logout", authMW, h.Logout)
	ag.GET("/me", authMW, h.Me)
	ag.POST("/verify-email", authMW, h.VerifyEmail)

	api.POST("/admin/auth/login", throttle("admin-login"), h.AdminLogin)

	admin := api.Group("/admin", authMW, adminMW)
	admin.POST("/auth/register", h.AdminRegister)
	admin.POST("/logout", h.AdminLogout)
	admin.GET("/users", h.ListUsers)
	admin.GET("/users/:id", h.GetUser)
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.svc.Register(c.Request.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	h.setSessionCookie(c, middleware.AuthCookie, session.Token)
	server.RespondCreated(c, "Registration successful", session.User)
}

// AdminRegister handles POST /api/admin/auth/register. The route is gated by
// an authenticated ADMIN session; the shared registration token is checked on
// top of that.
func (h *Handler) AdminRegister(c *gin.Context) {
	var req AdminRegisterRequest
	if !h.bind(c, &req) {
		return
	}

	actor, _ := authctx.GetGin(c)
	session, err := h.svc.RegisterAdmin(c.Request.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	}, req.AdminToken, actor.ID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	h.setSessionCookie(c, middleware.AdminCookie, session.Token)
	server.RespondCreated(c, "Admin registered successfully", session.User)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.svc.Login(c.Request.Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	h.setSessionCookie(c, middleware.AuthCookie, session.Token)
	server.RespondOK(c, "Logged in successfully", session.User)
}

// AdminLogin handles POST /api/admin/auth/login.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}

	session, err := h.svc.LoginAdmin(c.Request.Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	h.setSessionCookie(c, middleware.AdminCookie, session.Token)
	server.RespondOK(c, "Admin logged in successfully", session.User)
}

// Logout handles POST /api/auth/logout: revokes the session and clears the
// cookie.
func (h *Handler) Logout(c *gin.Context) {
	h.logout(c, middleware.AuthCookie)
}

// AdminLogout handles POST /api/admin/logout.
func (h *Handler) AdminLogout(c *gin.Context) {
	h.logout(c, middleware.AdminCookie)
}

func (h *Handler) logout(c *gin.Context, cookieName string) {
	raw := bearerOrCookie(c, cookieName)
	if raw != "" {
		if err := h.svc.Logout(c.Request.Context(), raw); err != nil {
			server.RespondWithError(c, err)
			return
		}
	}
	h.clearSessionCookie(c, cookieName)
	server.RespondOK(c, "Logged out successfully", nil)
}

// Refresh handles POST /api/auth/refresh: exchanges a near-expiry token for
// a fresh one and re-sets the cookie.
func (h *Handler) Refresh(c *gin.Context) {
	raw := bearerOrCookie(c, middleware.AuthCookie)
	if raw == "" {
		server.RespondWithError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	signed, err := h.svc.Refresh(c.Request.Context(), raw)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	h.setSessionCookie(c, middleware.AuthCookie, signed)
	server.RespondOK(c, "Token refreshed", gin.H{"token": signed})
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(c *gin.Context) {
	principal, ok := authctx.GetGin(c)
	if !ok {
		server.RespondWithError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	profile, err := h.svc.Me(c.Request.Context(), principal.ID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "", profile)
}

// VerifyEmail handles POST /api/auth/verify-email.
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if !h.bind(c, &req) {
		return
	}

	principal, ok := authctx.GetGin(c)
	if !ok {
		server.RespondWithError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	if err := h.svc.VerifyEmail(c.Request.Context(), principal.ID, req.Code); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "Email verified successfully", nil)
}

// GetUser handles GET /api/admin/users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	profile, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "", profile)
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	profiles, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, "", profiles)
}

// bind decodes and validates the JSON body, writing the error response
// itself on failure.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		server.RespondWithError(c, apperrors.Validation("invalid JSON in request body"))
		return false
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return false
	}
	return true
}

// setSessionCookie sets an httpOnly SameSite=Strict session cookie whose
// lifetime mirrors the token TTL. Secure in production.
func (h *Handler) setSessionCookie(c *gin.Context, name, value string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, int(h.svc.TokenTTL().Seconds()), "/", "", h.production, true)
}

// clearSessionCookie removes the session cookie.
func (h *Handler) clearSessionCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, "", -1, "/", "", h.production, true)
}

// bearerOrCookie pulls the raw token from the Authorization header or the
// named cookie.
func bearerOrCookie(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); len(header) > 7 &&
		(header[:7] == "Bearer " || header[:7] == "bearer ") {
		return header[7:]
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}
