package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ifsports/match-comments-service/models"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Имена claims, которые выпускает сервис аутентификации кампуса.
const (
	jwtClaimRegistration = "registration"
	jwtClaimCampus       = "campus"
	jwtClaimGroups       = "groups"
)

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Authenticate проверяет Bearer-токен и кладёт собранного Actor в
// контекст запроса. Источник ролей - claim groups; сюда он приходит
// уже готовым списком, сервис ролей остаётся внешним.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		actor, err := actorFromClaims(claims)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	var actor models.Actor

	registration, ok := claims[jwtClaimRegistration].(string)
	if !ok || registration == "" {
		return actor, fmt.Errorf("missing '%s' claim in token", jwtClaimRegistration)
	}
	actor.Registration = registration

	// Кампус может отсутствовать у сервисных токенов.
	if campus, ok := claims[jwtClaimCampus].(string); ok {
		actor.Campus = campus
	}

	groupsClaim, ok := claims[jwtClaimGroups].([]interface{})
	if !ok {
		return actor, fmt.Errorf("missing or invalid '%s' claim in token", jwtClaimGroups)
	}
	for _, group := range groupsClaim {
		groupStr, ok := group.(string)
		if !ok {
			return actor, fmt.Errorf("invalid group value in '%s' claim: %v", jwtClaimGroups, group)
		}
		actor.Roles = append(actor.Roles, models.ActorRole(groupStr))
	}

	return actor, nil
}

// ActorFromContext достаёт актора, положенного Authenticate.
func ActorFromContext(ctx context.Context) (models.Actor, error) {
	actor, ok := ctx.Value(actorContextKey).(models.Actor)
	if !ok {
		return models.Actor{}, errors.New("actor not found in context")
	}
	return actor, nil
}

// RequireCapability отклоняет запрос до сервисного слоя, если набор
// ролей актора не даёт требуемого права.
func RequireCapability(capability models.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := ActorFromContext(r.Context())
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if !actor.HasCapability(capability) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
