package tensor

import (
	"testing"
)

func TestConcatCols(t *testing.T) {
	a := Filled(1.0, 3, 4)
	b := Filled(2.0, 3, 1)
	c := Filled(3.0, 3, 5)

	out, err := ConcatCols(a, b, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dims := out.Dims()
	if dims[0] != 3 || dims[1] != 10 {
		t.Errorf("incorrect concat dims %v", dims)
	}
	row := out.Row(1)
	expected := []float64{1, 1, 1, 1, 2, 3, 3, 3, 3, 3}
	for i, v := range expected {
		if row[i] != v {
			t.Errorf("row[%d] = %f, expected %f", i, row[i], v)
		}
	}
}

func TestConcatColsRejectsHigherRank(t *testing.T) {
	a := Zeros(3, 4)
	img := Zeros(3, 8, 8, 1)
	if _, err := ConcatCols(a, img); err == nil {
		t.Errorf("expected error concatenating rank-4 tensor")
	}
}

func TestConcatColsRejectsBatchMismatch(t *testing.T) {
	a := Zeros(3, 4)
	b := Zeros(5, 4)
	if _, err := ConcatCols(a, b); err == nil {
		t.Errorf("expected error on batch mismatch")
	}
}

func TestZeroRows(t *testing.T) {
	a := Filled(7.0, 4, 2)
	a.ZeroRows([]int{1, 3})
	for i := 0; i < 4; i++ {
		want := 7.0
		if i == 1 || i == 3 {
			want = 0.0
		}
		for _, v := range a.Row(i) {
			if v != want {
				t.Errorf("row %d = %f, expected %f", i, v, want)
			}
		}
	}
}

func TestScaleClampInPlace(t *testing.T) {
	a := Filled(2.0, 2, 3)
	a.Scale(3.0).Clamp(0, 5)
	for _, v := range a.Data() {
		if v != 5.0 {
			t.Errorf("expected clamped value 5, got %f", v)
		}
	}
}

func TestRowLenHigherRank(t *testing.T) {
	img := Zeros(10, 16, 32, 3)
	if img.RowLen() != 16*32*3 {
		t.Errorf("incorrect row length %d", img.RowLen())
	}
	if img.BatchSize() != 10 {
		t.Errorf("incorrect batch size %d", img.BatchSize())
	}
}

func TestMeanRows(t *testing.T) {
	a := Zeros(3, 2)
	a.CopyRow(0, []float64{1, 3})
	a.CopyRow(1, []float64{5, 7})
	a.CopyRow(2, []float64{9, 11})
	if m := a.MeanRows([]int{0, 2}); m != 6.0 {
		t.Errorf("mean of rows 0,2 = %f, expected 6", m)
	}
	if m := a.MeanRows(nil); m != 0 {
		t.Errorf("mean of no rows should be 0, got %f", m)
	}
}
