// Package search ranks resource instances by display name and keeps the
// candidate set a user has picked for relating.
package search

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"resource-cards/internal/model"
)

// MinScore is the lowest fuzzy score kept by Rank.
const MinScore = 0.6

type Hit struct {
	Resource model.Resource `json:"resource"`
	Score    float64        `json:"score"`
}

// Score rates how well name matches term in [0, 2]. Substring matches score
// above 1 (prefix matches highest); anything else is the best levenshtein
// similarity of term against the whole name or one of its words.
func Score(name, term string) float64 {
	name = strings.ToLower(strings.TrimSpace(name))
	term = strings.ToLower(strings.TrimSpace(term))
	if name == "" || term == "" {
		return 0
	}
	switch {
	case name == term:
		return 2
	case strings.HasPrefix(name, term):
		return 1.5
	case strings.Contains(name, term):
		return 1.25
	}
	best := similarity(name, term)
	for _, w := range strings.Fields(name) {
		if s := similarity(w, term); s > best {
			best = s
		}
	}
	return best
}

func similarity(a, b string) float64 {
	maxlen := len([]rune(a))
	if n := len([]rune(b)); n > maxlen {
		maxlen = n
	}
	if maxlen == 0 {
		return 0
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxlen)
}

// Rank returns resources scoring at least MinScore, best first. limit <= 0
// means no limit. An empty term matches everything in name order.
func Rank(resources []model.Resource, term string, limit int) []Hit {
	hits := []Hit{}
	if strings.TrimSpace(term) == "" {
		for _, r := range resources {
			hits = append(hits, Hit{Resource: r})
		}
		sort.SliceStable(hits, func(i, j int) bool {
			return strings.ToLower(hits[i].Resource.Name) < strings.ToLower(hits[j].Resource.Name)
		})
	} else {
		for _, r := range resources {
			if s := Score(r.Name, term); s >= MinScore {
				hits = append(hits, Hit{Resource: r, Score: s})
			}
		}
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].Score != hits[j].Score {
				return hits[i].Score > hits[j].Score
			}
			return strings.ToLower(hits[i].Resource.Name) < strings.ToLower(hits[j].Resource.Name)
		})
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
