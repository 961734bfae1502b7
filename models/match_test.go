package models

import "testing"

func TestMatchStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from MatchStatus
		to   MatchStatus
		want bool
	}{
		{"not started to in progress", StatusNotStarted, StatusInProgress, true},
		{"not started to finished", StatusNotStarted, StatusFinished, true},
		{"in progress to finished", StatusInProgress, StatusFinished, true},
		{"in progress to in progress", StatusInProgress, StatusInProgress, true},
		{"finished to finished", StatusFinished, StatusFinished, true},
		{"in progress to not started", StatusInProgress, StatusNotStarted, false},
		{"finished to in progress", StatusFinished, StatusInProgress, false},
		{"finished to not started", StatusFinished, StatusNotStarted, false},
		{"unknown source status", MatchStatus("paused"), StatusFinished, false},
		{"unknown target status", StatusNotStarted, MatchStatus("paused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestMatchStatus_IsValid(t *testing.T) {
	for _, status := range []MatchStatus{StatusNotStarted, StatusInProgress, StatusFinished} {
		if !status.IsValid() {
			t.Errorf("IsValid(%q) = false, want true", status)
		}
	}
	for _, status := range []MatchStatus{"", "paused", "completed"} {
		if status.IsValid() {
			t.Errorf("IsValid(%q) = true, want false", status)
		}
	}
}

func TestMatch_Snapshot(t *testing.T) {
	match := &Match{
		TeamHomeID: newUUID(t),
		TeamAwayID: newUUID(t),
		ScoreHome:  2,
		ScoreAway:  1,
		Status:     StatusInProgress,
	}
	match.ID = newUUID(t)

	snapshot := match.Snapshot()
	if snapshot.MatchID != match.ID {
		t.Errorf("snapshot match id = %s, want %s", snapshot.MatchID, match.ID)
	}
	if snapshot.ScoreHome != 2 || snapshot.ScoreAway != 1 {
		t.Errorf("snapshot score = (%d, %d), want (2, 1)", snapshot.ScoreHome, snapshot.ScoreAway)
	}

	// Снимок не должен меняться вместе с матчем.
	match.ScoreHome = 5
	if snapshot.ScoreHome != 2 {
		t.Errorf("snapshot score mutated to %d after match update", snapshot.ScoreHome)
	}
}
