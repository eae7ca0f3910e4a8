package content

import "sort"

const (
	// MaxRelated caps the number of related posts returned by Related.
	MaxRelated = 6
	// MinRelatedScore is the lowest score a candidate needs to be listed.
	// A category match alone scores 1, so at least one shared tag is required.
	MinRelatedScore = 2

	categoryWeight = 1
	tagWeight      = 2
)

// Target identifies the article a related list is built for.
type Target struct {
	Slug     string
	Category string
	Tags     []string
}

// TargetOf returns the Target describing p.
func TargetOf(p Post) Target {
	return Target{Slug: p.Slug, Category: p.Category, Tags: p.Tags}
}

// Scored is a candidate post with its relevance score.
type Scored struct {
	Post  Post
	Score int
}

// Score returns the relevance of p to t: one point for the same category and
// two points for every target tag p also carries. The target itself scores 0.
func Score(p Post, t Target) int {
	if p.Slug == t.Slug {
		return 0
	}
	score := 0
	if p.Category == t.Category {
		score += categoryWeight
	}
	for _, tag := range t.Tags {
		if p.HasTag(tag) {
			score += tagWeight
		}
	}
	return score
}

// RankRelated scores every post except the target, keeps those scoring at least
// MinRelatedScore, and orders them by score, then date, newest first. Equal
// score and date fall back to slug order so the output is stable.
func RankRelated(posts []Post, t Target) []Scored {
	ranked := make([]Scored, 0, len(posts))
	for _, p := range posts {
		if p.Slug == t.Slug {
			continue
		}
		if s := Score(p, t); s >= MinRelatedScore {
			ranked = append(ranked, Scored{Post: p, Score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Post.Date.Equal(b.Post.Date) {
			return a.Post.Date.After(b.Post.Date)
		}
		return a.Post.Slug < b.Post.Slug
	})
	if len(ranked) > MaxRelated {
		ranked = ranked[:MaxRelated]
	}
	return ranked
}

// Related returns at most MaxRelated posts related to t, best match first.
// It returns an empty slice when nothing qualifies.
func Related(posts []Post, t Target) []Post {
	ranked := RankRelated(posts, t)
	out := make([]Post, len(ranked))
	for i, r := range ranked {
		out[i] = r.Post
	}
	return out
}
