// Package leaderboard orders player records for display.
package leaderboard

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/scoreboard/internal/domain/model"
)

// Key maps a record to its ordering value. Null or NaN averages rank as +Inf
// so they land after every real average.
func Key(r model.PlayerRecord) float64 {
	if r.OverallAvg == nil || math.IsNaN(*r.OverallAvg) {
		return math.Inf(1)
	}
	return *r.OverallAvg
}

// Compare orders a before b by Key. It is the comparator Sort uses.
func Compare(a, b model.PlayerRecord) int {
	return cmp.Compare(Key(a), Key(b))
}

// Sort orders records ascending by overall average in place. The sort is
// stable: equal averages keep the order the store returned them in.
func Sort(records []model.PlayerRecord) []model.PlayerRecord {
	slices.SortStableFunc(records, Compare)
	return records
}
