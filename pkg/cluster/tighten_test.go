package cluster

import (
	"reflect"
	"testing"
)

func TestTightenScenarioA(t *testing.T) {
	l := Place(sizedItems(Weight{"A", 10}, Weight{"B", 1}, Weight{"C", 5}))
	st := Tighten(l, DefaultTightenPasses)

	if !st.Converged {
		t.Fatalf("Tighten() did not converge: %+v", st)
	}
	if st.Moves != 122 || st.Passes != 43 {
		t.Errorf("Tighten() = %+v, want 122 moves in 43 passes", st)
	}
	assertNoOverlap(t, l)

	want := []Placement{
		{ID: "A", X: 0, Y: -122, Size: 300, Strategy: StrategyAnchor},
		{ID: "C", X: -161, Y: 0, Size: 161, Strategy: StrategyAdjacent},
		{ID: "B", X: -50, Y: -50, Size: 50, Strategy: StrategyAdjacent},
	}
	if got := l.Placements(); !reflect.DeepEqual(got, want) {
		t.Errorf("Placements() = %+v, want %+v", got, want)
	}
}

func TestTightenIdempotent(t *testing.T) {
	tests := []struct {
		name    string
		weights []Weight
	}{
		{"scenario", []Weight{{"A", 10}, {"B", 1}, {"C", 5}}},
		{"random 30", randomWeights(2, 30, 40)},
		{"random 60", randomWeights(3, 60, 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Place(sizedItems(tt.weights...))
			first := Tighten(l, 5000)
			if !first.Converged {
				t.Fatalf("first Tighten() did not converge: %+v", first)
			}
			assertNoOverlap(t, l)

			before := l.Placements()
			second := Tighten(l, 5000)
			if second.Moves != 0 || second.Passes != 1 {
				t.Errorf("second Tighten() = %+v, want no moves in one pass", second)
			}
			if !reflect.DeepEqual(before, l.Placements()) {
				t.Error("second Tighten() moved squares")
			}
		})
	}
}

func TestTightenKeepsLayoutValid(t *testing.T) {
	items := sizedItems(randomWeights(11, 80, 50)...)
	l := Place(items)
	Tighten(l, DefaultTightenPasses)

	assertNoOverlap(t, l)
	if l.Len() != len(items) {
		t.Errorf("Len() = %d, want %d", l.Len(), len(items))
	}
	for _, r := range l.Rects() {
		if r.Width() != r.Item().Size {
			t.Errorf("%s changed size", r.ID())
		}
	}
}

func TestTightenPassLimit(t *testing.T) {
	l := Place(sizedItems(Weight{"A", 10}, Weight{"B", 1}, Weight{"C", 5}))

	st := Tighten(l, 1)
	if st.Passes != 1 || st.Converged {
		t.Errorf("Tighten(1) = %+v, want one unconverged pass", st)
	}

	st = Tighten(l, 0)
	if st.Passes != 0 || st.Moves != 0 {
		t.Errorf("Tighten(0) = %+v, want nothing", st)
	}
}

func TestTightenSingle(t *testing.T) {
	l := Place(sizedItems(Weight{"solo", 3}))
	st := Tighten(l, DefaultTightenPasses)

	if !st.Converged || st.Moves != 0 {
		t.Errorf("Tighten(single) = %+v, want converged without moves", st)
	}
	if r := l.At(0); r.X() != 0 || r.Y() != 0 {
		t.Errorf("single square moved to (%d, %d)", r.X(), r.Y())
	}
}

func TestTowards(t *testing.T) {
	tests := []struct {
		d, n int64
		want int
	}{
		{10, 3, 1},
		{-10, 3, -1},
		{3, 3, 0},
		{-3, 3, 0},
		{0, 3, 0},
	}
	for _, tt := range tests {
		if got := towards(tt.d, tt.n); got != tt.want {
			t.Errorf("towards(%d, %d) = %d, want %d", tt.d, tt.n, got, tt.want)
		}
	}
}
