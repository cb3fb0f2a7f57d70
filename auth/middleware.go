package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// MiddlewareConfig configures the Bearer-token route guard.
type MiddlewareConfig struct {
	// Validator checks raw tokens; usually the TokenService.
	Validator TokenValidator

	// ContextKey is the locals key claims are stored under (default "user").
	ContextKey string

	// AuthScheme is the Authorization header scheme (default "Bearer").
	AuthScheme string

	// RequiredRole, when set, rejects validated sessions missing the role.
	RequiredRole string

	// ErrorHandler renders auth failures. Required; the server package
	// installs its JSON error writer here.
	ErrorHandler router.ErrorHandler
}

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// Protected returns a middleware that requires a valid Bearer session token
// and stores its claims in the request locals. With RequiredRole set it also
// enforces role membership, using the roles minted into the token.
func Protected(cfg MiddlewareConfig) router.MiddlewareFunc {
	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := extractBearerToken(ctx, cfg.AuthScheme)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.Validator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole) {
				return cfg.ErrorHandler(ctx, ErrInsufficientRole.Clone().WithMetadata(map[string]any{
					"required_role": cfg.RequiredRole,
				}))
			}

			ctx.Locals(cfg.ContextKey, claims)

			return next(ctx)
		}
	}
}

// ClaimsFromContext returns the session claims a Protected middleware stored
// for this request.
func ClaimsFromContext(ctx router.Context, contextKey string) (AuthClaims, error) {
	if contextKey == "" {
		contextKey = "user"
	}

	claims, ok := ctx.Locals(contextKey).(AuthClaims)
	if !ok || claims == nil {
		return nil, ErrTokenMalformed.Clone()
	}

	return claims, nil
}

func extractBearerToken(ctx router.Context, authScheme string) (string, error) {
	header := ctx.GetString(router.HeaderAuthorization, "")
	if header == "" {
		return "", errors.New("missing or malformed JWT", errors.CategoryAuth).
			WithTextCode(TextCodeTokenMalformed).
			WithCode(errors.CodeUnauthorized)
	}

	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		return strings.TrimSpace(header[l:]), nil
	}

	return "", errors.New("missing or malformed JWT", errors.CategoryAuth).
		WithTextCode(TextCodeTokenMalformed).
		WithCode(errors.CodeUnauthorized)
}
