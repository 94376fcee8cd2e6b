package scrollengine

import (
	"testing"
	"time"
)

func TestAnimatorIdleProducesNoAction(t *testing.T) {
	var a Animator
	action := a.Advance(time.Now())
	if action.Active {
		t.Fatal("idle animator should produce an inactive FrameAction")
	}
}

func TestAnimatorFeedStartsAnimatingAndEmitsBegan(t *testing.T) {
	var a Animator
	start := time.Now()
	a.Feed(3, 0, start, presetSmooth)

	action := a.Advance(start.Add(10 * time.Millisecond))
	if !action.Active || !action.NeedsBegan {
		t.Fatalf("expected began on first frame, got %+v", action)
	}
	if !action.HasDelta {
		t.Fatalf("expected a changed delta on the first animating frame, got %+v", action)
	}
}

// TestAnimatorConvergesToInputSum exercises spec.md §8's convergence
// property: summed Y deltas over a full gesture should land within one
// pixel of tickDelta * pxPerTick for the Smooth preset (3 * 60 = 180,
// matching the worked example in spec.md §8 scenario 2).
func TestAnimatorConvergesToInputSum(t *testing.T) {
	var a Animator
	start := time.Now()
	a.Feed(3, 0, start, presetSmooth)

	// Only the animating-phase deltas should converge to the input sum;
	// momentum is additional inertial travel on top of that, by design.
	var sumY float64
	now := start
	step := 10 * time.Millisecond
	sawMomentumEnd := false

	for i := 0; i < 200; i++ {
		now = now.Add(step)
		action := a.Advance(now)
		if !action.Active {
			break
		}
		if action.HasDelta && !action.Momentum {
			sumY += action.DeltaY
		}
		if action.MomentumEnded {
			sawMomentumEnd = true
			break
		}
	}

	if !sawMomentumEnd {
		t.Fatal("expected the gesture to reach momentum-end within the simulated window")
	}
	want := 3.0 * presetSmooth.PxPerTick
	if diff := sumY - want; diff > 1 || diff < -1 {
		t.Fatalf("summed Y delta = %v, want within 1px of %v", sumY, want)
	}
}

func TestAnimatorAccumulatesOnSecondTickBeforeSettling(t *testing.T) {
	var a Animator
	start := time.Now()
	a.Feed(1, 0, start, presetSmooth)
	a.Advance(start.Add(5 * time.Millisecond))

	a.Feed(1, 0, start.Add(10*time.Millisecond), presetSmooth)
	a.mu.Lock()
	target := a.y.target
	already := a.y.alreadyScrolled
	a.mu.Unlock()

	if already != 0 {
		t.Fatalf("alreadyScrolled should reset to 0 on accumulate, got %v", already)
	}
	wantTarget := presetSmooth.PxPerTick // remaining (60 - alreadyAtFeedTime) + 60, alreadyAtFeedTime small
	if target <= wantTarget-1 || target > 2*presetSmooth.PxPerTick+1 {
		t.Fatalf("target after accumulate = %v, expected roughly one extra tick's worth", target)
	}
}

func TestApplyDragNeverCrossesZero(t *testing.T) {
	v := applyDrag(5, 1000, 0.85, 1.0)
	if v < 0 {
		t.Fatalf("drag must clamp at zero, got %v", v)
	}
}

func TestApplyDragPreservesSign(t *testing.T) {
	v := applyDrag(-100, 1, 0.85, 0.01)
	if v >= 0 {
		t.Fatalf("expected negative velocity to remain negative after a small drag step, got %v", v)
	}
}

func TestClampAbs(t *testing.T) {
	if got := clampAbs(10, 5); got != 5 {
		t.Fatalf("clampAbs(10,5) = %v, want 5", got)
	}
	if got := clampAbs(-10, 5); got != -5 {
		t.Fatalf("clampAbs(-10,5) = %v, want -5", got)
	}
	if got := clampAbs(2, 5); got != 2 {
		t.Fatalf("clampAbs(2,5) = %v, want 2", got)
	}
}
