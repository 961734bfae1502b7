package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ifsports/match-comments-service/models"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthenticator(testSecret)

	var gotActor models.Actor
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ActorFromContext(r.Context())
		if err != nil {
			t.Errorf("ActorFromContext() error = %v", err)
		}
		gotActor = actor
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid token populates the actor", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"registration": "20230001",
			"campus":       "CM",
			"groups":       []string{"organizer", "player"},
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if gotActor.Registration != "20230001" || gotActor.Campus != "CM" {
			t.Errorf("actor = %+v", gotActor)
		}
		if len(gotActor.Roles) != 2 || gotActor.Roles[0] != models.RoleOrganizer {
			t.Errorf("actor roles = %v, want [organizer player]", gotActor.Roles)
		}
	})

	unauthorized := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not a bearer token", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{
			name: "wrong secret",
			header: "Bearer " + func() string {
				token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					"registration": "20230001",
					"groups":       []string{"admin"},
				})
				signed, _ := token.SignedString([]byte("other-secret"))
				return signed
			}(),
		},
	}

	for _, tt := range unauthorized {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}

	t.Run("token without groups is rejected", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"registration": "20230001"})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireCapability(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	protected := auth.Authenticate(
		RequireCapability(models.CapabilityManageMatches)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}),
		),
	)

	tests := []struct {
		name       string
		groups     []string
		wantStatus int
	}{
		{name: "organizer may manage matches", groups: []string{"organizer"}, wantStatus: http.StatusNoContent},
		{name: "admin may manage matches", groups: []string{"admin"}, wantStatus: http.StatusNoContent},
		{name: "player may not", groups: []string{"player"}, wantStatus: http.StatusForbidden},
		{name: "viewer may not", groups: []string{"viewer"}, wantStatus: http.StatusForbidden},
		{name: "unknown role may not", groups: []string{"mascot"}, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signToken(t, jwt.MapClaims{
				"registration": "20230001",
				"campus":       "CM",
				"groups":       tt.groups,
			})

			req := httptest.NewRequest(http.MethodPatch, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
