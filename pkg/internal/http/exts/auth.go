package exts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// Account is the caller identity carried by a bearer token.
type Account struct {
	ID      uint
	Groups  []uint
	IsAdmin bool
}

type AccountClaims struct {
	Groups  []uint `json:"groups"`
	IsAdmin bool   `json:"admin"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(viper.GetString("security.jwt_secret"))
}

func IssueToken(account Account, ttl time.Duration) (string, error) {
	claims := AccountClaims{
		Groups:  account.Groups,
		IsAdmin: account.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(account.ID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

func ReadToken(raw string) (Account, error) {
	var account Account
	token, err := jwt.ParseWithClaims(raw, &AccountClaims{}, func(t *jwt.Token) (any, error) {
		return jwtSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return account, fmt.Errorf("unable to parse token: %v", err)
	}
	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid {
		return account, fmt.Errorf("invalid token claims")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return account, fmt.Errorf("invalid token subject %q", claims.Subject)
	}

	account.ID = uint(id)
	account.Groups = claims.Groups
	account.IsAdmin = claims.IsAdmin
	return account, nil
}

// ContextMiddleware reads the bearer token when present. Requests without
// one carry on anonymously and are rejected by EnsureAuthenticated later.
func ContextMiddleware(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) == 0 {
		return c.Next()
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
	}
	account, err := ReadToken(raw)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}
	c.Locals("user", account)
	return c.Next()
}

func EnsureAuthenticated(c *fiber.Ctx) error {
	if _, ok := c.Locals("user").(Account); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "you must sign in first")
	}
	return nil
}

func EnsureAdmin(c *fiber.Ctx) error {
	if err := EnsureAuthenticated(c); err != nil {
		return err
	}
	if !c.Locals("user").(Account).IsAdmin {
		return fiber.NewError(fiber.StatusForbidden, "missing admin permission")
	}
	return nil
}
