package detect

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPercentileRank(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{name: "empty", values: nil, want: []float64{}},
		{name: "single", values: []float64{7}, want: []float64{1}},
		{name: "distinct", values: []float64{30, 10, 20, 40}, want: []float64{0.75, 0.25, 0.5, 1}},
		{name: "ties share average rank", values: []float64{1, 2, 2, 3}, want: []float64{0.25, 0.625, 0.625, 1}},
		{name: "all equal", values: []float64{5, 5, 5}, want: []float64{2.0 / 3, 2.0 / 3, 2.0 / 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentileRank(tt.values)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("PercentileRank() mismatch (-want +got):\n%s", diff)
			}
			for _, r := range got {
				if r <= 0 || r > 1 {
					t.Errorf("rank %v outside (0, 1]", r)
				}
			}
		})
	}
}

func TestRankWhereExcludesZeroPopulation(t *testing.T) {
	values := []float64{0, 0.5, 0, 0.25, 1}
	got := RankWhere(len(values),
		func(i int) float64 { return values[i] },
		func(i int) bool { return values[i] > 0 },
	)

	for _, i := range []int{0, 2} {
		if got[i] != nil {
			t.Errorf("index %d: want nil rank for excluded value, got %v", i, *got[i])
		}
	}

	want := map[int]float64{3: 1.0 / 3, 1: 2.0 / 3, 4: 1}
	for i, w := range want {
		if got[i] == nil {
			t.Fatalf("index %d: want rank %v, got nil", i, w)
		}
		if diff := cmp.Diff(w, *got[i], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("index %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestRankWhereNothingIncluded(t *testing.T) {
	got := RankWhere(3, func(int) float64 { return 1 }, func(int) bool { return false })
	if diff := cmp.Diff([]*float64{nil, nil, nil}, got); diff != "" {
		t.Errorf("RankWhere() mismatch (-want +got):\n%s", diff)
	}
}
