package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/kmcheng/discusshub-backend/db"
	"github.com/kmcheng/discusshub-backend/db/model"
	"github.com/kmcheng/discusshub-backend/env"
	"gorm.io/gorm"
)

// Authenticator verifies the access token, loads the account and the session
// matching the device, and rejects accounts the admin has not approved yet.
// Downstream handlers read "user" and "session" from the context.
func Authenticator(logger *log.Logger) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie("accessToken")
			if err != nil {
				logger.Println(err)
				if errors.Is(err, http.ErrNoCookie) {
					w.WriteHeader(http.StatusUnauthorized)
				} else {
					w.WriteHeader(http.StatusInternalServerError)
				}
				return
			}
			t, err := jwt.Parse(c.Value, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(env.HS256_SECRET), nil
			})
			if err != nil || !t.Valid {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claims, ok := t.Claims.(jwt.MapClaims)
			if !ok || claims["aud"] != r.Context().Value("deviceIP") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			uid := claims["sub"].(string)
			ip := claims["aud"].(string)
			db := db.GetDB(r.Context())
			var u model.User
			if err := db.Preload("Sessions").First(&u, uid).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					w.WriteHeader(http.StatusForbidden)
				} else {
					w.WriteHeader(http.StatusInternalServerError)
				}
				return
			}
			if !u.Approved {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("account pending approval"))
				return
			}
			var s *model.Session
			for i := range u.Sessions {
				if u.Sessions[i].IP == ip {
					s = &u.Sessions[i]
					break
				}
			}
			if s == nil {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("session does not exist"))
				return
			}
			ctx := context.WithValue(context.WithValue(r.Context(), "user", &u), "session", s)
			h.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
