package messaging

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestResolveIdempotencyKey(t *testing.T) {
	matchID := uuid.New()
	home := uuid.New()
	away := uuid.New()

	tests := []struct {
		name       string
		matchID    string
		teamHomeID string
		teamAwayID string
		wantErr    error
		wantNilID  bool
	}{
		{
			name:       "full identity",
			matchID:    matchID.String(),
			teamHomeID: home.String(),
			teamAwayID: away.String(),
		},
		{
			name:       "match id is optional",
			matchID:    "",
			teamHomeID: home.String(),
			teamAwayID: away.String(),
			wantNilID:  true,
		},
		{
			name:       "missing home team",
			teamHomeID: "",
			teamAwayID: away.String(),
			wantErr:    ErrMissingTeamID,
		},
		{
			name:       "missing away team",
			teamHomeID: home.String(),
			teamAwayID: "",
			wantErr:    ErrMissingTeamID,
		},
		{
			name:       "malformed team id",
			teamHomeID: "not-a-uuid",
			teamAwayID: away.String(),
			wantErr:    ErrInvalidID,
		},
		{
			name:       "malformed match id",
			matchID:    "42",
			teamHomeID: home.String(),
			teamAwayID: away.String(),
			wantErr:    ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ResolveIdempotencyKey(tt.matchID, tt.teamHomeID, tt.teamAwayID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if key.TeamHomeID != home || key.TeamAwayID != away {
				t.Errorf("key teams = (%s, %s), want (%s, %s)", key.TeamHomeID, key.TeamAwayID, home, away)
			}
			if tt.wantNilID {
				if key.MatchID != nil {
					t.Errorf("key.MatchID = %v, want nil", key.MatchID)
				}
			} else if key.MatchID == nil || *key.MatchID != matchID {
				t.Errorf("key.MatchID = %v, want %s", key.MatchID, matchID)
			}
		})
	}
}
