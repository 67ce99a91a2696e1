package sim

import (
	"math/rand"
	"testing"
)

func newTestCollider(vols ...Volume) *Collider {
	reg := NewRegistry(6, 4)
	for _, v := range vols {
		reg.Register(v)
	}
	reg.Freeze()
	return NewCollider(reg)
}

func wallBox(minX, minZ, maxX, maxZ float64) Volume {
	return NewVolume(KindWall, BoxFromMinMax(V3(minX, 0, minZ), V3(maxX, 4, maxZ)), 0)
}

// --- Scenario: corner slide ---

func TestSlide_CornerBlocksOnlyX(t *testing.T) {
	col := newTestCollider(wallBox(1, -5, 2, 5))
	ext := V3(0.5, 1, 0.5)
	start := V3(0, 1, 0)

	got := col.AttemptSlideMove(start, V3(1, 0, 1), ext)
	if got.X != 0 {
		t.Fatalf("x should be blocked, got %.3f", got.X)
	}
	if got.Z != 1 {
		t.Fatalf("z should take the full delta, got %.3f", got.Z)
	}
}

func TestSlide_ZeroDeltaIsNoop(t *testing.T) {
	col := newTestCollider(wallBox(1, -5, 2, 5))
	start := V3(0.3, 1, -0.2)
	if got := col.AttemptSlideMove(start, Vec3{}, V3(0.5, 1, 0.5)); got != start {
		t.Fatalf("zero delta moved actor to %+v", got)
	}
}

func TestSlide_IgnoresVerticalDelta(t *testing.T) {
	col := newTestCollider()
	got := col.AttemptSlideMove(V3(0, 1, 0), V3(0, 5, 0.1), V3(0.5, 1, 0.5))
	if got.Y != 1 || got.Z != 0.1 {
		t.Fatalf("vertical delta should be ignored, got %+v", got)
	}
}

func TestSlide_FullyBlocked(t *testing.T) {
	col := newTestCollider(wallBox(1, -5, 2, 5), wallBox(-5, 1, 5, 2))
	start := V3(0, 1, 0)
	if got := col.AttemptSlideMove(start, V3(1, 0, 1), V3(0.5, 1, 0.5)); got != start {
		t.Fatalf("both axes blocked, actor moved to %+v", got)
	}
}

// Slide invariant: near a corner, if either single-axis move is free the
// actor always gets somewhere.
func TestSlide_NeverStopsWhenOneAxisFree(t *testing.T) {
	col := newTestCollider(wallBox(1, 1, 3, 3))
	ext := V3(0.4, 1, 0.4)
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- test
	for i := 0; i < 2000; i++ {
		start := V3(rng.Float64()*2-0.5, 1, rng.Float64()*2-0.5)
		if col.WouldCollide(start, ext) {
			continue
		}
		delta := V3((rng.Float64()*2-1)*0.3, 0, (rng.Float64()*2-1)*0.3)
		xFree := !col.WouldCollide(V3(start.X+delta.X, 1, start.Z), ext)
		zFree := !col.WouldCollide(V3(start.X, 1, start.Z+delta.Z), ext)
		got := col.AttemptSlideMove(start, delta, ext)
		if (xFree || zFree) && got == start {
			t.Fatalf("stuck at %+v with delta %+v (xFree=%v zFree=%v)", start, delta, xFree, zFree)
		}
		if col.WouldCollide(got, ext) {
			t.Fatalf("slide from %+v ended inside geometry at %+v", start, got)
		}
	}
}

// Collision soundness: the pruned check agrees with a brute-force scan of
// every registered volume.
func TestWouldCollide_MatchesBruteForce(t *testing.T) {
	var vols []Volume
	rng := rand.New(rand.NewSource(11)) // #nosec G404 -- test
	for x := 0; x < 8; x++ {
		for z := 0; z < 8; z++ {
			if rng.Float64() < 0.35 {
				vols = append(vols, NewVolume(KindWall,
					AABB{Center: V3(float64(x)*4, 2, float64(z)*4), Half: V3(2, 2, 2)}, 0))
			} else if rng.Float64() < 0.2 {
				vols = append(vols, NewVolume(KindProp,
					AABB{Center: V3(float64(x)*4+1, 1, float64(z)*4), Half: V3(0.6, 1, 0.6)},
					rng.Float64()*3))
			}
		}
	}
	col := newTestCollider(vols...)
	ext := V3(0.4, 1, 0.4)
	for i := 0; i < 3000; i++ {
		p := V3(rng.Float64()*32-2, 1.5, rng.Float64()*32-2)
		box := BoxAt(p, ext)
		want := false
		for _, v := range vols {
			if box.Intersects(v.Bounds()) {
				want = true
				break
			}
		}
		got := col.WouldCollide(p, ext)
		if got != want {
			t.Fatalf("WouldCollide(%+v) = %v, brute force says %v", p, got, want)
		}
		if got {
			v, ok := col.Blocker(p, ext)
			if !ok || !box.Intersects(v.Bounds()) {
				t.Fatalf("Blocker at %+v returned non-intersecting volume", p)
			}
		}
	}
}

func TestMoveDirect_TakesFullDeltaWhenFree(t *testing.T) {
	col := newTestCollider()
	got := col.MoveDirect(V3(0, 0, 0), V3(0.1, 0, 0.1), V3(0.5, 1, 0.5))
	if got != V3(0.1, 0, 0.1) {
		t.Fatalf("expected full delta, got %+v", got)
	}
}

func TestMoveDirect_FallsBackToSlide(t *testing.T) {
	col := newTestCollider(wallBox(1, -5, 2, 5))
	got := col.MoveDirect(V3(0.4, 1, 0), V3(0.2, 0, 0.2), V3(0.5, 1, 0.5))
	if got.X != 0.4 || got.Z != 0.2 {
		t.Fatalf("expected slide along the wall, got %+v", got)
	}
}

func TestRaycast_NearestWallOnly(t *testing.T) {
	col := newTestCollider(
		wallBox(-1, 6, 1, 7),
		wallBox(-1, 3, 1, 4),
		NewVolume(KindProp, BoxFromMinMax(V3(-1, 0, 1), V3(1, 2, 2)), 0),
	)
	d, ok := col.Raycast(V3(0, 1, 0), V3(0, 0, 1), 20, KindWall)
	if !ok || !approx(d, 3, 1e-9) {
		t.Fatalf("expected nearest wall at 3, got %.3f ok=%v", d, ok)
	}
	d, ok = col.Raycast(V3(0, 1, 0), V3(0, 0, 1), 20, KindProp)
	if !ok || !approx(d, 1, 1e-9) {
		t.Fatalf("expected prop at 1, got %.3f ok=%v", d, ok)
	}
}

func TestRaycast_LongRayFindsDistantWall(t *testing.T) {
	col := newTestCollider(wallBox(-1, 38, 1, 40))
	d, ok := col.Raycast(V3(0, 1, 0), V3(0, 0, 1), 50, KindWall)
	if !ok || !approx(d, 38, 1e-9) {
		t.Fatalf("expected hit at 38, got %.3f ok=%v", d, ok)
	}
}

func TestRaycast_Degenerate(t *testing.T) {
	col := newTestCollider(wallBox(-1, 3, 1, 4))
	if _, ok := col.Raycast(V3(0, 1, 0), Vec3{}, 10, KindWall); ok {
		t.Fatal("zero direction should not hit")
	}
	if _, ok := col.Raycast(V3(0, 1, 0), V3(0, 0, 1), 0, KindWall); ok {
		t.Fatal("zero length should not hit")
	}
}
