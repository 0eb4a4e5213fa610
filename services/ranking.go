package services

import (
	"math"
	"sort"

	"arguepulse/models"
)

// LaneSize caps every ranked lane
const LaneSize = 20

// ComputeBalance returns min/max of the two weighted totals rounded to three
// decimals: 1 for a perfect tie, towards 0 for a lopsided split. A statement
// without any weight scores 0 so it never shows up as a 50/50 debate.
func ComputeBalance(agreeWeight, disagreeWeight float64) float64 {
	if agreeWeight+disagreeWeight == 0 {
		return 0
	}
	ratio := math.Min(agreeWeight, disagreeWeight) / math.Max(agreeWeight, disagreeWeight)
	return math.Round(ratio*1000) / 1000
}

// WithBalance returns a copy of st carrying its current balance score
func WithBalance(st models.Statement) models.Statement {
	st.BalanceScore = ComputeBalance(st.AgreeWeight, st.DisagreeWeight)
	return st
}

// RankLanes orders the statements into the three display lanes. Each lane is
// an independent stable sort, so ties keep their input order and a statement
// may appear in several lanes.
func RankLanes(statements []models.Statement) models.Lanes {
	items := make([]models.Statement, len(statements))
	for i, st := range statements {
		items[i] = WithBalance(st)
	}

	return models.Lanes{
		MostPopular: rankBy(items, func(a, b models.Statement) bool {
			return a.TotalVotes > b.TotalVotes
		}),
		FiftyFifty: rankBy(items, func(a, b models.Statement) bool {
			return a.BalanceScore > b.BalanceScore
		}),
		NewHot: rankBy(items, func(a, b models.Statement) bool {
			return a.CreatedAt.After(b.CreatedAt)
		}),
	}
}

func rankBy(items []models.Statement, before func(a, b models.Statement) bool) []models.Statement {
	lane := make([]models.Statement, len(items))
	copy(lane, items)
	sort.SliceStable(lane, func(i, j int) bool {
		return before(lane[i], lane[j])
	})
	if len(lane) > LaneSize {
		lane = lane[:LaneSize]
	}
	return lane
}
