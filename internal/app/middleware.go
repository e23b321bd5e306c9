package app

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/persely/persely/internal/config"
	"github.com/persely/persely/pkg/auth"
	"github.com/persely/persely/pkg/user"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Resolve the signed-in user into the request context. Requests without
	// a valid session pass through; services reject them downstream.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			cookie, err := req.Cookie(auth.SessionCookieName)
			if err == nil && cookie.Value != "" {
				userId, found, err := deps.AuthRepo.FindUserIdByToken(ctx, cookie.Value, deps.Clock.Now())
				if err != nil {
					http.Error(w, "failed to resolve session", http.StatusInternalServerError)
					return
				}
				if found {
					u, err := deps.UserService.GetUserById(ctx, userId)
					if err != nil {
						log.Errorf("failed to get user %d for session: %v", userId, err)
						http.Error(w, "failed to resolve session", http.StatusInternalServerError)
						return
					}
					ctx = user.WithUser(ctx, u)
					next.ServeHTTP(w, req.WithContext(ctx))
					return
				}
				log.Debugf("session token not found or expired")
			}

			// X-User-Id fallback for local development.
			userIdHeader := req.Header.Get("X-User-Id")
			if cfg.Auth.AllowHeaderAuth && userIdHeader != "" {
				u, err := deps.UserService.GetUserByUid(ctx, userIdHeader)
				if err != nil {
					if errors.Is(err, user.ErrUserNotFound) {
						log.Debugf("user not found: %s", userIdHeader)
						http.Error(w, "user not found", http.StatusForbidden)
						return
					}
					log.Errorf("failed to get user: %v", err)
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				ctx = user.WithUser(ctx, u)
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
