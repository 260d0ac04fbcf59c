package seating

import (
	"reflect"
	"testing"
)

func TestHashSeed(t *testing.T) {
	if got := hashSeed(""); got != 2166136261 {
		t.Fatalf("hashSeed(\"\") = %d, want 2166136261", got)
	}
	if got := hashSeed("seed-1-CSE"); got != 3599190542 {
		t.Fatalf("hashSeed(\"seed-1-CSE\") = %d, want 3599190542", got)
	}
}

func TestSeededShuffleGolden(t *testing.T) {
	tests := []struct {
		seed string
		want []int
	}{
		{"seed-1-CSE", []int{3, 1, 5, 2, 8, 4, 6, 7}},
		{"seed-1-ECE", []int{8, 3, 2, 4, 5, 6, 7, 1}},
	}
	input := []int{1, 2, 3, 4, 5, 6, 7, 8}
	for _, tt := range tests {
		got := SeededShuffle(input, tt.seed)
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("SeededShuffle(%v, %q) = %v, want %v", input, tt.seed, got, tt.want)
		}
	}
}

func TestSeededShuffleStrings(t *testing.T) {
	input := []string{"a", "b", "c", "d", "e"}
	if got, want := SeededShuffle(input, "alpha"), []string{"a", "d", "e", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("seed alpha: got %v, want %v", got, want)
	}
	if got, want := SeededShuffle(input, "alphb"), []string{"e", "a", "c", "b", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("seed alphb: got %v, want %v", got, want)
	}
}

func TestSeededShuffleDeterministic(t *testing.T) {
	input := []int{10, 20, 30, 40, 50, 60, 70}
	first := SeededShuffle(input, "repeat-me")
	for i := 0; i < 10; i++ {
		if got := SeededShuffle(input, "repeat-me"); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: got %v, want %v", i, got, first)
		}
	}
}

func TestSeededShuffleDoesNotMutateInput(t *testing.T) {
	input := []int{1, 2, 3, 4, 5, 6, 7, 8}
	SeededShuffle(input, "seed-1-CSE")
	if !reflect.DeepEqual(input, []int{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Fatalf("input mutated: %v", input)
	}
}

func TestSeededShuffleSeedSensitivity(t *testing.T) {
	input := []int{1, 2, 3, 4, 5, 6, 7, 8}
	a := SeededShuffle(input, "seed-1-CSE")
	b := SeededShuffle(input, "seed-1-ECE")
	if reflect.DeepEqual(a, b) {
		t.Fatalf("different seeds produced identical order %v", a)
	}
}

func TestSeededShuffleEdgeSizes(t *testing.T) {
	if got := SeededShuffle([]int{}, "x"); len(got) != 0 {
		t.Fatalf("empty input: got %v", got)
	}
	if got := SeededShuffle([]int{42}, "x"); !reflect.DeepEqual(got, []int{42}) {
		t.Fatalf("single element: got %v", got)
	}
}
