package datasets

import "reflect"
import "testing"

func TestGather(t *testing.T) {
	s := &Set{
		Inputs: []Input{{1}, {2}, {3}},
		Labels: [][][]float64{
			{{1, 0}, {0, 1}, {1, 0}},
			{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		},
	}
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	g, err := s.Gather([]int{2, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g.Inputs, []Input{{3}, {1}, {3}}) {
		t.Errorf("inputs = %v", g.Inputs)
	}
	if g.Tasks() != 2 || !reflect.DeepEqual(g.Labels[1][1], []float64{0, 0, 1}) {
		t.Errorf("labels = %v", g.Labels)
	}
	if _, err := s.Gather([]int{3}); err == nil {
		t.Errorf("expected out of range error")
	}
}

func TestFrameSelect(t *testing.T) {
	f := &Frame{
		Columns: []string{"Entry", "Sequence", "EC number"},
		Rows: [][]string{
			{"P1", "MKV", "1.1.1.1"},
			{"P2", "MAA", ""},
		},
	}
	rows, err := f.Select([]int{1, 0}, []string{"EC number", "Entry"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows, [][]string{{"", "P2"}, {"1.1.1.1", "P1"}}) {
		t.Errorf("rows = %v", rows)
	}
	if _, err := f.Select([]int{0}, []string{"Organism"}); err == nil {
		t.Errorf("expected unknown column error")
	}
}
