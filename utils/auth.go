// utils/auth.go
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleCustomer = "customer"
	RoleStylist  = "stylist"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

const sessionKey = "session"

// PasswordCost is the bcrypt cost used by HashPassword. Tests lower it.
var PasswordCost = 12

var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed session payload.
type Claims struct {
	TenantID string `json:"tenantId"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Session is what AuthMiddleware stores on the request context.
type Session struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     string
}

func (s Session) IsStaff() bool {
	return s.Role == RoleStylist || s.Role == RoleManager || s.Role == RoleAdmin
}

func (s Session) IsManager() bool {
	return s.Role == RoleManager || s.Role == RoleAdmin
}

// Generate JWT secret key (run once initially)
func GenerateJWTSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate JWT secret")
	}
	return base64.StdEncoding.EncodeToString(key)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken signs a session token for the user.
func GenerateToken(secret string, userID, tenantID uuid.UUID, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not set")
	}
	now := time.Now()
	claims := Claims{
		TenantID: tenantID.String(),
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry and returns the session.
func ParseToken(secret, tokenString string) (Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	return Session{UserID: userID, TenantID: tenantID, Role: claims.Role}, nil
}

// AuthMiddleware reads the session from the cookie, falling back to the
// Authorization header.
func AuthMiddleware(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := c.Cookie(cookieName)
		if tokenString == "" {
			header := c.GetHeader("Authorization")
			if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
				tokenString = header[7:]
			}
		}
		if tokenString == "" {
			RespondWithCode(c, CodeUnauthorized, "Authentication required", nil)
			return
		}

		session, err := ParseToken(secret, tokenString)
		if err != nil {
			RespondWithCode(c, CodeUnauthorized, "Invalid or expired session", nil)
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireRoles must run after AuthMiddleware.
func RequireRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok {
			RespondWithCode(c, CodeUnauthorized, "Authentication required", nil)
			return
		}
		if !slices.Contains(allowed, s.Role) {
			RespondWithCode(c, CodeForbidden, "Insufficient permissions", nil)
			return
		}
		c.Next()
	}
}

func SessionFrom(c *gin.Context) (Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}

// MustSession is for handlers mounted behind AuthMiddleware.
func MustSession(c *gin.Context) Session {
	s, _ := SessionFrom(c)
	return s
}
