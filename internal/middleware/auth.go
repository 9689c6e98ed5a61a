package middleware

import (
	"crypto/rsa"
	"net/http"
	"strings"

	"authservice/internal/model"
	"authservice/internal/token"
	"authservice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the authentication stages for downstream handlers.
const (
	CtxUserID         = "userID"
	CtxUserRole       = "userRole"
	CtxRefreshTokenID = "refreshTokenID"
)

// Auth is the access-control guard: an authentication stage (signature
// verification, claims into context) followed by an authorization stage
// (role allow-list). Each stage short-circuits the request on rejection.
type Auth struct {
	publicKey *rsa.PublicKey
	issuer    *token.Issuer

	cookieDomain string
	secure       bool
}

// NewAuth builds the guard. publicKey verifies access tokens; the issuer
// supplies the refresh-token secret and the revocation lookup.
func NewAuth(publicKey *rsa.PublicKey, issuer *token.Issuer, cookieDomain string, secure bool) *Auth {
	return &Auth{
		publicKey:    publicKey,
		issuer:       issuer,
		cookieDomain: cookieDomain,
		secure:       secure,
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error("AuthenticationError", msg))
}

// accessTokenFromRequest tries the accessToken cookie first, then the
// Authorization header.
func accessTokenFromRequest(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie != "" {
		return cookie, true
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// Authenticate verifies the access token signature against the RSA public
// key and attaches {sub, role} to the request context. Missing, expired,
// malformed or badly signed tokens are rejected before any handler runs.
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := accessTokenFromRequest(c)
		if !ok {
			abortUnauthorized(c, "Authorization is missing")
			return
		}

		claims := &token.Claims{}
		parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return a.publicKey, nil
		})
		if err != nil || !parsed.Valid {
			abortUnauthorized(c, "Invalid token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole is the authorization stage. It must run after Authenticate:
// a request without an authenticated identity is rejected as 401, a role
// outside the allow-list as 403.
func (a *Auth) RequireRole(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(CtxUserRole)
		if !exists {
			abortUnauthorized(c, "Authorization is missing")
			return
		}
		userRole, ok := value.(model.Role)
		if !ok {
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			response.Error("AuthorizationError", "Access denied: insufficient permissions"))
	}
}

func (a *Auth) parseRefreshClaims(c *gin.Context) (*token.Claims, bool) {
	tokenString, err := c.Cookie("refreshToken")
	if err != nil || tokenString == "" {
		abortUnauthorized(c, "Refresh token is missing")
		return nil, false
	}

	claims := &token.Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.issuer.RefreshSecret(), nil
	})
	if err != nil || !parsed.Valid {
		abortUnauthorized(c, "Invalid refresh token")
		return nil, false
	}
	return claims, true
}

func setRefreshContext(c *gin.Context, claims *token.Claims) bool {
	userID, err := claims.UserID()
	if err != nil {
		abortUnauthorized(c, "Invalid token claims")
		return false
	}
	tokenID, err := claims.RefreshTokenID()
	if err != nil {
		abortUnauthorized(c, "Invalid token claims")
		return false
	}

	c.Set(CtxUserID, userID)
	c.Set(CtxUserRole, claims.Role)
	c.Set(CtxRefreshTokenID, tokenID)
	return true
}

// ValidateRefreshToken guards the refresh endpoint: signature check with the
// HMAC secret, then a revocation lookup keyed by (jti, sub). A token whose
// row is gone is rejected even though its signature still verifies.
func (a *Auth) ValidateRefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.parseRefreshClaims(c)
		if !ok {
			return
		}
		if !setRefreshContext(c, claims) {
			return
		}

		tokenID := c.GetUint(CtxRefreshTokenID)
		userID := c.GetUint(CtxUserID)
		revoked, err := a.issuer.IsRevoked(c.Request.Context(), tokenID, userID)
		if err != nil || revoked {
			abortUnauthorized(c, "Refresh token has been revoked")
			return
		}

		c.Next()
	}
}

// ParseRefreshToken verifies the refresh cookie's signature without the
// revocation lookup. Logout uses it so revoking twice stays idempotent.
func (a *Auth) ParseRefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.parseRefreshClaims(c)
		if !ok {
			return
		}
		if !setRefreshContext(c, claims) {
			return
		}
		c.Next()
	}
}

// SetTokenCookies sets accessToken and refreshToken as HttpOnly, same-site
// strict cookies with the token lifetimes as max-age.
func (a *Auth) SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", accessToken, int(token.AccessTokenTTL.Seconds()), "/", a.cookieDomain, a.secure, true)
	c.SetCookie("refreshToken", refreshToken, int(token.RefreshTokenTTL.Seconds()), "/", a.cookieDomain, a.secure, true)
}

// ClearTokenCookies removes both auth cookies.
func (a *Auth) ClearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", "", -1, "/", a.cookieDomain, a.secure, true)
	c.SetCookie("refreshToken", "", -1, "/", a.cookieDomain, a.secure, true)
}
