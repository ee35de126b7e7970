package testbackend

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/Kirill-j/bookinghub/internal/models"
)

type ctxKey string

const (
	ctxUserID ctxKey = "userId"
	ctxRole   ctxKey = "role"
)

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "Требуется авторизация", http.StatusUnauthorized)
			return
		}
		claims, err := s.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			http.Error(w, "Неверный токен", http.StatusUnauthorized)
			return
		}
		uid, err := claims.UserID()
		if err != nil {
			http.Error(w, "Неверный токен", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, uid)
		ctx = context.WithValue(ctx, ctxRole, models.Role(claims.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireRoles(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := roleFrom(r)
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Недостаточно прав", http.StatusForbidden)
		})
	}
}

func userIDFrom(r *http.Request) uint64 {
	id, _ := r.Context().Value(ctxUserID).(uint64)
	return id
}

func roleFrom(r *http.Request) models.Role {
	role, _ := r.Context().Value(ctxRole).(models.Role)
	return role
}

func pathID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(chi.URLParam(r, "id")), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func ok(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"ok": true})
}
