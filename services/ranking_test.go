package services

import (
	"fmt"
	"testing"
	"time"

	"arguepulse/models"
)

func TestComputeBalance(t *testing.T) {
	tests := []struct {
		agree, disagree float64
		want            float64
	}{
		{0, 0, 0},
		{7, 3, 0.429},
		{3, 7, 0.429},
		{5, 5, 1},
		{4, 0, 0},
		{0, 2.5, 0},
		{1.5, 1, 0.667},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v-%v", tt.agree, tt.disagree), func(t *testing.T) {
			if got := ComputeBalance(tt.agree, tt.disagree); got != tt.want {
				t.Errorf("ComputeBalance(%v, %v) = %v, want %v", tt.agree, tt.disagree, got, tt.want)
			}
		})
	}
}

func TestComputeBalanceRange(t *testing.T) {
	for agree := 0.0; agree <= 10; agree += 0.5 {
		for disagree := 0.0; disagree <= 10; disagree += 0.5 {
			b := ComputeBalance(agree, disagree)
			if b < 0 || b > 1 {
				t.Fatalf("balance %v out of range for %v/%v", b, agree, disagree)
			}
			if b != ComputeBalance(disagree, agree) {
				t.Fatalf("balance not symmetric for %v/%v", agree, disagree)
			}
		}
	}
}

func makeStatements(n int) []models.Statement {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	statements := make([]models.Statement, n)
	for i := range statements {
		statements[i] = models.Statement{
			Text:           fmt.Sprintf("statement %d", i),
			CreatedAt:      base.Add(time.Duration(i%7) * time.Hour),
			TotalVotes:     int64(i % 5),
			AgreeWeight:    float64(i % 3),
			DisagreeWeight: float64(i % 4),
		}
	}
	return statements
}

func TestRankLanesLength(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 21, 45} {
		lanes := RankLanes(makeStatements(n))
		want := n
		if want > LaneSize {
			want = LaneSize
		}
		for name, lane := range map[string][]models.Statement{
			"mostPopular": lanes.MostPopular,
			"fiftyFifty":  lanes.FiftyFifty,
			"newHot":      lanes.NewHot,
		} {
			if len(lane) != want {
				t.Errorf("n=%d: %s has %d statements, want %d", n, name, len(lane), want)
			}
		}
	}
}

func TestRankLanesOrderAndStability(t *testing.T) {
	statements := makeStatements(30)
	lanes := RankLanes(statements)

	indexOf := func(st models.Statement) int {
		var i int
		fmt.Sscanf(st.Text, "statement %d", &i)
		return i
	}

	checkLane := func(name string, lane []models.Statement, key func(models.Statement) float64) {
		for i := 1; i < len(lane); i++ {
			prev, cur := key(lane[i-1]), key(lane[i])
			if prev < cur {
				t.Errorf("%s not descending at %d: %v < %v", name, i, prev, cur)
			}
			if prev == cur && indexOf(lane[i-1]) > indexOf(lane[i]) {
				t.Errorf("%s tie at %d broke input order", name, i)
			}
		}
	}

	checkLane("mostPopular", lanes.MostPopular, func(st models.Statement) float64 { return float64(st.TotalVotes) })
	checkLane("fiftyFifty", lanes.FiftyFifty, func(st models.Statement) float64 { return st.BalanceScore })
	checkLane("newHot", lanes.NewHot, func(st models.Statement) float64 { return float64(st.CreatedAt.Unix()) })
}

func TestRankLanesDoesNotMutateInput(t *testing.T) {
	statements := makeStatements(5)
	RankLanes(statements)
	for i, st := range statements {
		if st.Text != fmt.Sprintf("statement %d", i) {
			t.Fatalf("input reordered at %d", i)
		}
		if st.BalanceScore != 0 {
			t.Fatalf("input mutated at %d", i)
		}
	}
}

func TestRankLanesFiftyFiftyPrefersTies(t *testing.T) {
	statements := []models.Statement{
		{Text: "lopsided", AgreeWeight: 9, DisagreeWeight: 1},
		{Text: "unvoted"},
		{Text: "tied", AgreeWeight: 2, DisagreeWeight: 2},
	}
	lanes := RankLanes(statements)
	if lanes.FiftyFifty[0].Text != "tied" || lanes.FiftyFifty[0].BalanceScore != 1 {
		t.Errorf("Expected tied statement first, got %+v", lanes.FiftyFifty[0])
	}
	if lanes.FiftyFifty[2].Text != "unvoted" {
		t.Errorf("Expected unvoted statement last, got %q", lanes.FiftyFifty[2].Text)
	}
}
