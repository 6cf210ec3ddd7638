package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

type Claims struct {
	UserID uint            `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// JWT issues and checks the bearer tokens used by API clients.
type JWT struct {
	Secret []byte
	TTL    time.Duration
}

// GenerateToken creates a signed JWT for a given user
func (j *JWT) GenerateToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(j.TTL)
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.Secret)
	return signed, expires, err
}

// ParseToken validates signature, algorithm and expiry.
func (j *JWT) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Identify puts the caller's user id and role into the context when the
// request carries a logged-in session or a valid bearer token. Anonymous
// requests pass through untouched.
func Identify(j *JWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess := CurrentSession(c); sess != nil && sess.LoggedIn() {
			c.Set(ctxUserID, sess.UserID)
			c.Set(ctxRole, sess.Role)
			c.Next()
			return
		}
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			claims, err := j.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
				c.Abort()
				return
			}
			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxRole, claims.Role)
		}
		c.Next()
	}
}

// AuthRequired rejects anonymous callers. API requests get 401, page
// requests are sent to the login form.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) != 0 {
			c.Next()
			return
		}
		if wantsJSON(c) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Please log in to continue"})
		} else {
			c.Redirect(http.StatusFound, "/login?error=login_required")
		}
		c.Abort()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole := GetRole(c)
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		if wantsJSON(c) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Access denied. Required role(s): " + rolesString(roles),
			})
		} else {
			c.Redirect(http.StatusFound, "/access-denied")
		}
		c.Abort()
	}
}

func rolesString(roles []models.UserRole) string {
	s := make([]string, len(roles))
	for i, r := range roles {
		s[i] = string(r)
	}
	return strings.Join(s, ", ")
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// GetUserID extracts caller user ID from context; 0 for anonymous callers
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ctxUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(models.UserRole); ok {
			return r
		}
	}
	return ""
}

// UserIDPtr is GetUserID for nullable owner columns.
func UserIDPtr(c *gin.Context) *uint {
	id := GetUserID(c)
	if id == 0 {
		return nil
	}
	return &id
}
