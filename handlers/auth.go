package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/Sujan7036/friends-momo-sub001/middleware"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/service"
	"github.com/Sujan7036/friends-momo-sub001/session"

	"github.com/gin-gonic/gin"
)

// redirectWith sends the browser to path with the given query flags.
func redirectWith(c *gin.Context, path string, flags url.Values) {
	if len(flags) > 0 {
		path += "?" + flags.Encode()
	}
	c.Redirect(http.StatusFound, path)
}

func flag(key, value string) url.Values {
	return url.Values{key: {value}}
}

// safeRedirect only follows local paths.
func safeRedirect(target, fallback string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, `\`) {
		return target
	}
	return fallback
}

func homeFor(role models.UserRole) string {
	switch role {
	case models.RoleAdmin:
		return "/admin/dashboard"
	case models.RoleStaff:
		return "/staff/dashboard"
	default:
		return "/"
	}
}

// Login handles the login form
func (h *Handler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if email == "" || password == "" {
		redirectWith(c, "/login", flag("error", "missing_fields"))
		return
	}

	sess := middleware.CurrentSession(c)
	user, err := h.Auth.Login(c.Request.Context(), sess, email, password, c.ClientIP())
	if err != nil {
		code := "server_error"
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			code = "invalid_credentials"
		case errors.Is(err, service.ErrAccountDisabled):
			code = "account_disabled"
		case errors.Is(err, service.ErrTooManyAttempts):
			code = "too_many_attempts"
		default:
			c.Error(err)
		}
		redirectWith(c, "/login", flag("error", code))
		return
	}

	h.Sessions.Regenerate(c, sess)
	if c.PostForm("remember") != "" {
		token, expires, err := h.Auth.IssueRememberToken(c.Request.Context(), user.ID)
		if err != nil {
			c.Error(err)
		} else {
			h.Sessions.SetRemember(c, token, expires)
		}
	}
	redirectWith(c, safeRedirect(c.PostForm("redirect"), homeFor(user.Role)), flag("success", "logged_in"))
}

// Logout ends the session and forgets the remember-me cookie
func (h *Handler) Logout(c *gin.Context) {
	if sess := middleware.CurrentSession(c); sess != nil {
		h.Auth.Logout(c.Request.Context(), sess, c.ClientIP())
	}
	h.Sessions.Destroy(c)
	redirectWith(c, "/", flag("success", "logged_out"))
}

// Register handles the sign-up form
func (h *Handler) Register(c *gin.Context) {
	in := service.RegisterInput{
		FirstName:       c.PostForm("first_name"),
		LastName:        c.PostForm("last_name"),
		Email:           c.PostForm("email"),
		Phone:           c.PostForm("phone"),
		Password:        c.PostForm("password"),
		PasswordConfirm: c.PostForm("password_confirm"),
	}
	_, err := h.Auth.Register(c.Request.Context(), in, c.ClientIP())
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrEmailExists):
			redirectWith(c, "/register", flag("error", "email_exists"))
		case errors.As(err, &verr):
			fields := make([]string, 0, len(verr.Fields))
			for f := range verr.Fields {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			redirectWith(c, "/register", url.Values{"error": {"validation"}, "fields": {strings.Join(fields, ",")}})
		default:
			c.Error(err)
			redirectWith(c, "/register", flag("error", "server_error"))
		}
		return
	}
	redirectWith(c, "/login", flag("success", "registered"))
}

// ForgotPassword mails a reset link. The reply is the same whether or not
// the address belongs to an account.
func (h *Handler) ForgotPassword(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" {
		redirectWith(c, "/forgot-password", flag("error", "missing_email"))
		return
	}
	if err := h.Auth.RequestPasswordReset(c.Request.Context(), email, c.ClientIP()); err != nil {
		c.Error(err)
		redirectWith(c, "/forgot-password", flag("error", "server_error"))
		return
	}
	redirectWith(c, "/forgot-password", flag("success", "reset_sent"))
}

// ResetPassword sets a new password from a mailed token
func (h *Handler) ResetPassword(c *gin.Context) {
	token := c.PostForm("token")
	err := h.Auth.ResetPassword(c.Request.Context(), token, c.PostForm("password"), c.PostForm("password_confirm"), c.ClientIP())
	if err != nil {
		var verr *service.ValidationError
		code := "server_error"
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			code = "invalid_token"
		case errors.As(err, &verr):
			code = "validation"
		default:
			c.Error(err)
		}
		redirectWith(c, "/reset-password", url.Values{"token": {token}, "error": {code}})
		return
	}
	redirectWith(c, "/login", flag("success", "password_reset"))
}

type TokenRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IssueToken authenticates an API client and returns a JWT
func (h *Handler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.tokenLogin(c, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, expires, err := h.JWT.GenerateToken(user)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"expires_at": expires,
		"user":       user,
	})
}

// tokenLogin runs the login attempt counter for API clients, which carry no
// browser session. Failures are counted per client IP and email.
func (h *Handler) tokenLogin(c *gin.Context, email, password string) (*models.User, error) {
	ctx := c.Request.Context()
	key := "token-login:" + c.ClientIP() + ":" + repository.NormalizeEmail(email)
	counter, err := h.Sessions.Store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
		counter = &session.Session{ID: key}
	}

	user, err := h.Auth.Login(ctx, counter, email, password, c.ClientIP())
	if errors.Is(err, service.ErrInvalidCredentials) {
		if serr := h.Sessions.Store.Save(ctx, counter); serr != nil {
			c.Error(serr)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if derr := h.Sessions.Store.Delete(ctx, key); derr != nil {
		c.Error(derr)
	}
	return user, nil
}
