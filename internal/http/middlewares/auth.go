package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/prism/internal/http/helpers"
)

// AuthConfig parametriza la validación de access tokens (HMAC).
type AuthConfig struct {
	Secret []byte
	Issuer string
}

// RequireAuth valida Authorization: Bearer <JWT> y guarda sub/tid en el
// contexto. Responde 401 si falta o es inválido.
func RequireAuth(cfg AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				helpers.WriteError(w, helpers.ErrUnauthorized.WithDetail("missing bearer token"))
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims := jwt.MapClaims{}
			opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}
			_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return cfg.Secret, nil
			}, opts...)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				helpers.WriteError(w, helpers.ErrUnauthorized.WithDetail("invalid token"))
				return
			}

			ctx := r.Context()
			if sub, _ := claims["sub"].(string); sub != "" {
				ctx = WithUserID(ctx, sub)
			}
			if tid, _ := claims["tid"].(string); tid != "" {
				ctx = WithTenantID(ctx, tid)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
