package api

import (
	"alcyxob/coaching-app/internal/domain"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context key for the authenticated caller
const ContextCallerKey = "caller"

// jwtClaims is the payload of tokens issued by the external auth service.
type jwtClaims struct {
	UserID         string      `json:"uid"`
	Role           domain.Role `json:"role"`
	OrganizationID string      `json:"org"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the bearer token and stores the caller in the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		// Parse and validate the token
		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			// Validate the alg is what we expect:
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			// Return the secret key
			return []byte(jwtSecret), nil
		})
		// Handle errors during parsing/validation
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}

		if !token.Valid || claims.UserID == "" || claims.OrganizationID == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}
		if claims.Role != domain.RoleCoach && claims.Role != domain.RoleClient {
			abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Unknown role '%s' in token", claims.Role))
			return
		}
		// ParseWithClaims accepts tokens that carry no exp claim
		if claims.ExpiresAt == nil {
			abortWithError(c, http.StatusUnauthorized, "Token has no expiry")
			return
		}

		// --- Token is valid ---
		// Set caller information in the context for downstream handlers
		c.Set(ContextCallerKey, domain.Caller{
			UserID:         claims.UserID,
			OrganizationID: claims.OrganizationID,
			Role:           claims.Role,
		})

		// Continue to the next handler
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RoleMiddleware rejects callers whose role is not listed.
// Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := callerFromContext(c)
		if err != nil {
			// This should not happen if AuthMiddleware ran correctly
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}

		// Check if the caller's role is in the allowed list
		for _, allowedRole := range allowedRoles {
			if caller.Role == allowedRole {
				// Role is allowed, continue
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", caller.Role))
	}
}

func callerFromContext(c *gin.Context) (domain.Caller, error) {
	raw, exists := c.Get(ContextCallerKey)
	if !exists {
		return domain.Caller{}, errors.New("caller not found in context")
	}
	caller, ok := raw.(domain.Caller)
	if !ok {
		return domain.Caller{}, errors.New("invalid caller type in context")
	}
	return caller, nil
}
