package middleware

import (
	"bytes"
	"log"
	"strings"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	"viewtrack/internal/config"
)

// AdminAuth guards registry-mutating endpoints with the static bearer
// token from APP_ADMIN_TOKEN. Only the bcrypt hash of the token is kept
// in memory after startup. If no token is configured, the middleware is
// a no-op.
func AdminAuth(cfg *config.Config) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if cfg.AdminToken == "" {
		log.Printf("APP_ADMIN_TOKEN not set, registry endpoints are unauthenticated")
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return next
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminToken), bcrypt.DefaultCost)
	if err != nil {
		// Only reachable with an out-of-range cost; deny everything
		// rather than run open.
		log.Printf("failed to hash admin token: %v", err)
		return func(fasthttp.RequestHandler) fasthttp.RequestHandler {
			return func(ctx *fasthttp.RequestCtx) {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBodyString("admin auth unavailable")
			}
		}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			auth := ctx.Request.Header.Peek("Authorization")
			if len(auth) == 0 {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				ctx.SetBodyString("missing Authorization header")
				return
			}

			const prefix = "Bearer "
			if !bytes.HasPrefix(auth, []byte(prefix)) {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				ctx.SetBodyString("invalid Authorization header")
				return
			}

			token := strings.TrimSpace(string(auth[len(prefix):]))
			if bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				ctx.SetBodyString("invalid admin token")
				return
			}

			next(ctx)
		}
	}
}
