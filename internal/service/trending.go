package service

import (
	"math"
	"sort"
	"time"

	"github.com/rajbhoyar729/LokDarpan/internal/model"
)

const (
	// TrendingWindow is how far back trending candidates are drawn from.
	TrendingWindow = 7 * 24 * time.Hour
	// TrendingCandidates caps the number of videos scored per ranking.
	TrendingCandidates = 200

	likeWeight    = 3.0
	dislikeWeight = 2.0
	// gravity controls how fast a video decays with age.
	gravity = 1.5
)

// TrendingScore rates a video's engagement, decayed by age:
//
//	engagement = views + 3*likes - 2*dislikes   (floored at 0)
//	score      = engagement / (age_hours + 2)^1.5
//
// A video created after now is treated as brand new.
func TrendingScore(v *model.Video, now time.Time) float64 {
	engagement := float64(v.Views) + likeWeight*float64(v.Likes) - dislikeWeight*float64(v.Dislikes)
	if engagement <= 0 {
		return 0
	}

	age := now.Sub(v.CreatedAt).Hours()
	if age < 0 {
		age = 0
	}
	return engagement / math.Pow(age+2, gravity)
}

// RankTrending orders videos by TrendingScore, highest first, and returns at
// most limit of them. Ties go to the newer video.
func RankTrending(videos []*model.Video, now time.Time, limit int) []*model.Video {
	type scored struct {
		v     *model.Video
		score float64
	}
	ranked := make([]scored, len(videos))
	for i, v := range videos {
		ranked[i] = scored{v: v, score: TrendingScore(v, now)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].v.CreatedAt.After(ranked[j].v.CreatedAt)
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]*model.Video, len(ranked))
	for i, r := range ranked {
		out[i] = r.v
	}
	return out
}
