package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/rsmonitor/internal/config"
)

// Claims carries the authenticated username inside the JWT.
type Claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

// Authenticator issues and verifies the API's bearer tokens. The monitor has
// a single operator account, configured in the server section.
type Authenticator struct {
	secret       []byte
	adminUser    string
	passwordHash string
}

func New(cfg config.ServerConfig) *Authenticator {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logrus.Fatalf("Failed to generate JWT secret: %v", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		logrus.Warn("server.jwt_secret is not set, tokens will not survive a restart")
	}

	hash := cfg.AdminPasswordHash
	if hash == "" && cfg.AdminPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			logrus.Fatalf("Failed to hash admin password: %v", err)
		}
		hash = string(hashed)
	}
	if hash == "" {
		logrus.Warn("No admin password configured, API login is disabled")
	}

	return &Authenticator{
		secret:       secret,
		adminUser:    cfg.AdminUser,
		passwordHash: hash,
	}
}

// VerifyCredentials checks a login attempt against the operator account.
func (a *Authenticator) VerifyCredentials(username, password string) bool {
	if a.passwordHash == "" || username != a.adminUser {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) == nil
}

// GenerateToken signs a 24 hour token for the given username.
func (a *Authenticator) GenerateToken(username string) (string, error) {
	claims := Claims{
		Username: username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Middleware rejects requests that do not carry a valid bearer token.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}

		tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return a.secret, nil
		})
		if err != nil || !tkn.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}
