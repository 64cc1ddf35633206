package security

import (
	"errors"
	"fmt"
	"time"

	"assetdb/pkg/models"
	"assetdb/pkg/roles"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid cj_id or password")

type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (a *Authenticator) GenerateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"cj_id":     user.CjID,
		"name":      user.Name,
		"sec_level": user.SecLevel,
		"role":      user.Role().String(),
		"exp":       time.Now().Add(a.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Authenticator) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claims, nil
}

// CheckCredentials rejects temporary accounts, which never have a password.
func CheckCredentials(user *models.User, password string) error {
	if user == nil || user.PasswordHash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// GetUserIDFromContext returns the cj_id set by JWTMiddleware.
func GetUserIDFromContext(c *gin.Context) string {
	userID, _ := c.Get("userID")
	id, _ := userID.(string)
	return id
}

func IsAllowed(c *gin.Context, requiredRole roles.Role) bool {
	role, _ := c.Get("role")
	userRole, ok := role.(string)
	if !ok {
		return false
	}
	return roles.Role(userRole).HasPermission(requiredRole)
}
