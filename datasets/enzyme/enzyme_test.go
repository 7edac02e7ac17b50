package enzyme

import "reflect"
import "strings"
import "testing"

const tsv = "Entry\tSequence\tEC number\n" +
	"P1\tMKVLA\t1.1.1.1\n" +
	"P2\tMAAG\t\n" +
	"P3\tMKKKKKKKKKKKKKKK\t2.7.11.1\n" +
	"P4\tMCDE\t1.1.1.2; 2.7.11.1\n" +
	"P5\tMWWY\t1.2.-.-\n" +
	"P6\tMKLL\t\n"

func TestReadEnzymeMode(t *testing.T) {
	d, err := Read(strings.NewReader(tsv), Config{
		Mode:         ModeEnzyme,
		MaxLen:       10,
		TrainPercent: 1,
		NGram:        1,
		Seed:         1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Train.Len() != 5 || d.Test.Len() != 0 {
		t.Fatalf("split = %d/%d, want 5/0 (P3 is too long)", d.Train.Len(), d.Test.Len())
	}
	if !reflect.DeepEqual(d.Classes, [][]string{{"N", "Y"}}) {
		t.Errorf("classes = %v", d.Classes)
	}
	if d.Encoding.MaxLen != 5 || d.Encoding.Features != 21 {
		t.Errorf("encoding = %+v", d.Encoding)
	}
	entry := d.TrainFrame.Column("Entry")
	for i, row := range d.TrainFrame.Rows {
		y := d.Train.Labels[0][i]
		enzyme := row[entry] != "P2" && row[entry] != "P6"
		if enzyme != (y[1] == 1) || enzyme == (y[0] == 1) {
			t.Errorf("%s: label %v", row[entry], y)
		}
		if len(d.Train.Inputs[i]) != 5 {
			t.Errorf("%s: input not padded: %v", row[entry], d.Train.Inputs[i])
		}
	}
}

func TestReadECMode(t *testing.T) {
	d, err := Read(strings.NewReader(tsv), Config{
		Mode:         ModeEC,
		TrainPercent: 1,
		ECLevel:      4,
		Seed:         2,
	})
	if err != nil {
		t.Fatal(err)
	}
	// P2 and P6 have no EC number and P5 is incomplete
	if d.Train.Len() != 3 {
		t.Fatalf("kept %d entries, want 3", d.Train.Len())
	}
	if len(d.Tasks) != 4 || d.Tasks[3] != "level4" {
		t.Errorf("tasks = %v", d.Tasks)
	}
	if !reflect.DeepEqual(d.Classes[0], []string{"1", "2"}) {
		t.Errorf("level1 classes = %v", d.Classes[0])
	}
	if !reflect.DeepEqual(d.Classes[3], []string{"1.1.1.1", "1.1.1.2", "2.7.11.1"}) {
		t.Errorf("level4 classes = %v", d.Classes[3])
	}
	entry := d.TrainFrame.Column("Entry")
	for i, row := range d.TrainFrame.Rows {
		if row[entry] == "P4" {
			// multi-label entry is multi-hot
			if !reflect.DeepEqual(d.Train.Labels[0][i], []float64{1, 1}) {
				t.Errorf("P4 level1 = %v", d.Train.Labels[0][i])
			}
		}
	}
}

func TestReadECDropMultilabelDummy(t *testing.T) {
	d, err := Read(strings.NewReader(tsv), Config{
		Mode:            ModeEC,
		TrainPercent:    1,
		ECLevel:         3,
		DropMultilabel:  true,
		ApplyDummyLabel: true,
		Seed:            3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Train.Len() != 3 {
		t.Fatalf("kept %d entries, want P1 P3 P5", d.Train.Len())
	}
	if !reflect.DeepEqual(d.Classes[2], []string{"-", "1.1.1", "2.7.11"}) {
		t.Errorf("level3 classes = %v", d.Classes[2])
	}
}

func TestClassThreshold(t *testing.T) {
	d, err := Read(strings.NewReader(tsv), Config{
		Mode:                  ModeEC,
		TrainPercent:          1,
		ECLevel:               1,
		ClassExampleThreshold: 2,
		Seed:                  4,
	})
	if err != nil {
		t.Fatal(err)
	}
	// "1" has P1 P4 P5, "2" has P3 P4
	if !reflect.DeepEqual(d.Classes[0], []string{"1", "2"}) {
		t.Errorf("classes = %v", d.Classes[0])
	}
	d, err = Read(strings.NewReader(tsv), Config{
		Mode:                  ModeEC,
		TrainPercent:          1,
		ECLevel:               4,
		ClassExampleThreshold: 2,
		Seed:                  4,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d.Classes[3], []string{"2.7.11.1", Other}) {
		t.Errorf("level4 classes = %v", d.Classes[3])
	}
}

func TestSplit(t *testing.T) {
	d, err := Read(strings.NewReader(tsv), Config{TrainPercent: 0.5, Seed: 5})
	if err != nil {
		t.Fatal(err)
	}
	if d.Train.Len() != 3 || d.Test.Len() != 3 {
		t.Errorf("split = %d/%d", d.Train.Len(), d.Test.Len())
	}
	if len(d.TrainFrame.Rows) != 3 || len(d.TestFrame.Rows) != 3 {
		t.Errorf("frame split = %d/%d", len(d.TrainFrame.Rows), len(d.TestFrame.Rows))
	}
	if _, err := Read(strings.NewReader(tsv), Config{TrainPercent: 0}); err == nil {
		t.Errorf("expected train_percent error")
	}
}

func TestLoadSequences(t *testing.T) {
	d, err := Read(strings.NewReader(tsv), Config{TrainPercent: 1, MaxLen: 10, Seed: 6})
	if err != nil {
		t.Fatal(err)
	}
	in := "Entry\tSequence\nQ1\tMKV\nQ2\tMKVLAMKVLA\n"
	inputs, frame, err := LoadSequences(strings.NewReader(in), "", d.Encoding)
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 1 || frame.Rows[0][0] != "Q1" {
		t.Fatalf("kept %v", frame.Rows)
	}
	if inputs[0][0] == 0 || inputs[0][4] != 0 {
		t.Errorf("expected post padding, got %v", inputs[0])
	}
}
