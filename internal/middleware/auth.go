package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/blackinbot/backend/internal/contextkeys"
	"github.com/blackinbot/backend/types"
)

// Auth issues and checks the dashboard's bearer tokens. Tokens are HS256
// with the account email as subject.
type Auth struct {
	secret   []byte
	lifetime time.Duration
	accounts types.AccountStore
}

func NewAuth(secret string, lifetime time.Duration, accounts types.AccountStore) *Auth {
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	return &Auth{secret: []byte(secret), lifetime: lifetime, accounts: accounts}
}

func (a *Auth) GenerateToken(email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.lifetime)),
	})
	return token.SignedString(a.secret)
}

// RequireAccount validates the Authorization header and loads the account
// into the request context.
func (a *Auth) RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing access token"})
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		email, err := token.Claims.GetSubject()
		if err != nil || email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		account, err := a.accounts.GetAccountByEmail(email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
			return
		}

		c.Set(contextkeys.AccountEmail, email)
		c.Set(contextkeys.Account, account)
		c.Next()
	}
}

// AccountFrom returns the account loaded by RequireAccount.
func AccountFrom(c *gin.Context) *types.Account {
	v, ok := c.Get(contextkeys.Account)
	if !ok {
		return nil
	}
	account, _ := v.(*types.Account)
	return account
}
