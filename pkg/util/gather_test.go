package util

import (
	"testing"
	"time"
)

func TestGatherPreservesOrder(t *testing.T) {
	inputs := []int{5, 1, 4, 2, 3}
	got := Gather(inputs, func(_ int, n int) int {
		// Later inputs finish first; results must still follow input order.
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10
	})
	want := []int{50, 10, 40, 20, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestGatherIsolatedRecovers(t *testing.T) {
	ran := make([]bool, 3)
	recovered := GatherIsolated([]int{0, 1, 2}, func(i int, _ int) {
		ran[i] = true
		if i == 1 {
			panic("observer blew up")
		}
	})
	for i, ok := range ran {
		if !ok {
			t.Fatalf("fn %d did not run", i)
		}
	}
	if recovered[1] == nil {
		t.Fatal("panic was not captured")
	}
	if recovered[0] != nil || recovered[2] != nil {
		t.Fatal("healthy fns reported a panic")
	}
}
