package model

import "testing"

func TestToggleReaction(t *testing.T) {
	tests := []struct {
		name     string
		current  Reaction
		pressed  Reaction
		want     Reaction
		likes    int
		dislikes int
		action   ReactionAction
	}{
		{"like from neutral", ReactionNone, ReactionLike, ReactionLike, 1, 0, ActionLiked},
		{"like again unlikes", ReactionLike, ReactionLike, ReactionNone, -1, 0, ActionUnliked},
		{"like from disliked switches", ReactionDislike, ReactionLike, ReactionLike, 1, -1, ActionLiked},
		{"dislike from neutral", ReactionNone, ReactionDislike, ReactionDislike, 0, 1, ActionDisliked},
		{"dislike again undislikes", ReactionDislike, ReactionDislike, ReactionNone, 0, -1, ActionUndisliked},
		{"dislike from liked switches", ReactionLike, ReactionDislike, ReactionDislike, -1, 1, ActionDisliked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToggleReaction(tt.current, tt.pressed)
			if got.To != tt.want {
				t.Errorf("To = %q, want %q", got.To, tt.want)
			}
			if got.LikesDelta != tt.likes || got.DislikesDelta != tt.dislikes {
				t.Errorf("deltas = (%d, %d), want (%d, %d)", got.LikesDelta, got.DislikesDelta, tt.likes, tt.dislikes)
			}
			if got.Action != tt.action {
				t.Errorf("Action = %q, want %q", got.Action, tt.action)
			}
			if got.From != tt.current {
				t.Errorf("From = %q, want %q", got.From, tt.current)
			}
		})
	}
}

// TestToggleReaction_CountersMatchMembership simulates a video's counters under a sequence of presses by one user
// and checks the counters always equal the membership implied by the state.
func TestToggleReaction_CountersMatchMembership(t *testing.T) {
	sequences := [][]Reaction{
		{ReactionLike},
		{ReactionLike, ReactionLike},
		{ReactionLike, ReactionLike, ReactionLike},
		{ReactionLike, ReactionDislike},
		{ReactionDislike, ReactionLike, ReactionLike},
		{ReactionLike, ReactionDislike, ReactionDislike, ReactionDislike, ReactionLike},
	}

	for _, seq := range sequences {
		state := ReactionNone
		likes, dislikes := 0, 0
		for _, pressed := range seq {
			tr := ToggleReaction(state, pressed)
			state = tr.To
			likes += tr.LikesDelta
			dislikes += tr.DislikesDelta

			wantLikes, wantDislikes := 0, 0
			switch state {
			case ReactionLike:
				wantLikes = 1
			case ReactionDislike:
				wantDislikes = 1
			}
			if likes != wantLikes || dislikes != wantDislikes {
				t.Fatalf("sequence %v: counters (%d, %d) do not match state %q", seq, likes, dislikes, state)
			}
		}
	}
}

func TestToggleReaction_LikeParity(t *testing.T) {
	for n := 1; n <= 6; n++ {
		state := ReactionNone
		likes := 0
		for i := 0; i < n; i++ {
			tr := ToggleReaction(state, ReactionLike)
			state = tr.To
			likes += tr.LikesDelta
		}
		if n%2 == 1 && (state != ReactionLike || likes != 1) {
			t.Errorf("after %d likes: state=%q likes=%d, want liked/1", n, state, likes)
		}
		if n%2 == 0 && (state != ReactionNone || likes != 0) {
			t.Errorf("after %d likes: state=%q likes=%d, want neutral/0", n, state, likes)
		}
	}
}
