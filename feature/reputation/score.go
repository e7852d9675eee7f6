package reputation

import (
	"slices"
	"time"

	"bansync/core/models"
	"bansync/core/store"
)

const (
	// activeListPoints is scored once per list with at least one active ban.
	activeListPoints = 3
	// expiredBanPoints is scored for every expired ban.
	expiredBanPoints = 1
)

// Points scores bans as they are now, using the stored expired flag.
func Points(bans []models.Ban) int {
	return score(bans, func(b models.Ban) (bool, bool) {
		return true, b.Expired
	})
}

// PointsAsOf scores bans as they stood at cutoff: only bans created before
// cutoff count. A ban with an expiry is expired once that expiry is at or
// before cutoff; a ban flagged expired without an expiry has no recorded
// expiry moment and counts as expired.
func PointsAsOf(bans []models.Ban, cutoff time.Time) int {
	return score(bans, func(b models.Ban) (bool, bool) {
		if !b.Created.Before(cutoff) {
			return false, false
		}
		if b.Expires == nil {
			return true, b.Expired
		}
		return true, !b.Expires.After(cutoff)
	})
}

// score sums per list: activeListPoints if any counted ban is active, plus
// expiredBanPoints per counted expired ban.
func score(bans []models.Ban, classify func(models.Ban) (counted, expired bool)) int {
	type tally struct {
		active  bool
		expired int
	}
	lists := map[string]*tally{}

	for _, b := range bans {
		counted, expired := classify(b)
		if !counted {
			continue
		}
		t, ok := lists[b.ListID]
		if !ok {
			t = &tally{}
			lists[b.ListID] = t
		}
		if expired {
			t.expired++
		} else {
			t.active = true
		}
	}

	total := 0
	for _, t := range lists {
		if t.active {
			total += activeListPoints
		}
		total += t.expired * expiredBanPoints
	}
	return total
}

// Rank assigns competition ranks by points, highest first. Tied users share a
// rank and the next distinct value is ranked one past the number of users ahead
// of it: [10, 10, 7] ranks [1, 1, 3].
func Rank(points []store.UserPoints) map[string]int {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b store.UserPoints) int {
		return b.ReputationPoints - a.ReputationPoints
	})

	ranks := make(map[string]int, len(sorted))
	for i, p := range sorted {
		if i > 0 && p.ReputationPoints == sorted[i-1].ReputationPoints {
			ranks[p.ID] = ranks[sorted[i-1].ID]
			continue
		}
		ranks[p.ID] = i + 1
	}
	return ranks
}
