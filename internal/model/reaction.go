package model

// Reaction is the like/dislike state of one user on one video.
type Reaction string

const (
	ReactionNone    Reaction = ""
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// ReactionAction is reported back to the client after a toggle.
type ReactionAction string

const (
	ActionLiked      ReactionAction = "liked"
	ActionUnliked    ReactionAction = "unliked"
	ActionDisliked   ReactionAction = "disliked"
	ActionUndisliked ReactionAction = "undisliked"
)

// ReactionTransition is the outcome of pressing like or dislike from a
// given state.
type ReactionTransition struct {
	From          Reaction
	To            Reaction
	LikesDelta    int
	DislikesDelta int
	Action        ReactionAction
}

// ToggleReaction computes the transition for pressing the given button
// (ReactionLike or ReactionDislike) while in state current. Pressing the
// active button clears it; pressing the other one switches sides, moving
// one count from the old side to the new.
func ToggleReaction(current, pressed Reaction) ReactionTransition {
	t := ReactionTransition{From: current}

	if current == pressed {
		t.To = ReactionNone
		if pressed == ReactionLike {
			t.LikesDelta = -1
			t.Action = ActionUnliked
		} else {
			t.DislikesDelta = -1
			t.Action = ActionUndisliked
		}
		return t
	}

	switch current {
	case ReactionLike:
		t.LikesDelta = -1
	case ReactionDislike:
		t.DislikesDelta = -1
	}

	t.To = pressed
	if pressed == ReactionLike {
		t.LikesDelta++
		t.Action = ActionLiked
	} else {
		t.DislikesDelta++
		t.Action = ActionDisliked
	}
	return t
}

// ReactionState is a consistent snapshot read before a toggle.
type ReactionState struct {
	Likes    int
	Dislikes int
	Version  int64
	Current  Reaction
}

// ReactionResult is the response of PUT /video/:videoId/like and /dislike.
type ReactionResult struct {
	Action   ReactionAction `json:"action"`
	Likes    int            `json:"likes"`
	Dislikes int            `json:"dislikes"`
	Reaction Reaction       `json:"reaction"`
}
