package sim

import "testing"

func wallAt(x, z float64) Volume {
	return NewVolume(KindWall, AABB{Center: V3(x, 2, z), Half: V3(2, 2, 2)}, 0)
}

func TestRegistry_RegisterAfterFreezePanics(t *testing.T) {
	reg := NewRegistry(6, 4)
	reg.Register(wallAt(0, 0))
	reg.Freeze()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic registering into a frozen registry")
		}
	}()
	reg.Register(wallAt(4, 0))
}

func TestRegistry_KindsAreSeparated(t *testing.T) {
	reg := NewRegistry(6, 4)
	reg.Register(wallAt(0, 0))
	reg.Register(NewVolume(KindProp, AABB{Center: V3(1, 0.5, 1), Half: V3(0.8, 0.5, 0.8)}, 0))
	if len(reg.Walls()) != 1 || len(reg.Props()) != 1 || reg.Len() != 2 {
		t.Fatalf("walls=%d props=%d len=%d", len(reg.Walls()), len(reg.Props()), reg.Len())
	}
	region := AABB{Center: V3(0, 1, 0), Half: V3(1, 1, 1)}
	if got := reg.QueryKind(region, KindWall); len(got) != 1 || got[0].Kind != KindWall {
		t.Fatalf("QueryKind(wall) = %+v", got)
	}
	if got := reg.QueryKind(region, KindProp); len(got) != 1 || got[0].Kind != KindProp {
		t.Fatalf("QueryKind(prop) = %+v", got)
	}
}

func TestRegistry_QueryPrunesDistantVolumes(t *testing.T) {
	reg := NewRegistry(6, 4)
	for x := 0.0; x <= 80; x += 4 {
		reg.Register(wallAt(x, 0))
	}
	region := BoxAt(V3(0, 1, 4), V3(0.4, 1, 0.4))
	got := reg.Query(region)
	if len(got) == 0 {
		t.Fatal("expected nearby walls")
	}
	if len(got) >= len(reg.Walls()) {
		t.Fatalf("expected pruning, got all %d walls", len(got))
	}
	for _, v := range got {
		if v.Bounds().Center.X > 20 {
			t.Fatalf("wall at x=%.0f should have been pruned", v.Bounds().Center.X)
		}
	}
}

func TestRegistry_RotatedPropBounds(t *testing.T) {
	reg := NewRegistry(6, 4)
	box := AABB{Center: V3(0, 1, 0), Half: V3(0.6, 1, 0.2)}
	reg.Register(Volume{Box: box, Yaw: 1.0, Kind: KindProp})
	v := reg.Props()[0]
	if v.Bounds() == box {
		t.Fatal("rotated prop should have enlarged world bounds")
	}
	if v.Bounds().Half.Z <= box.Half.Z {
		t.Fatalf("rotation should widen Z, got %+v", v.Bounds().Half)
	}
}

func TestRegistry_PointsOfInterest(t *testing.T) {
	reg := NewRegistry(6, 4)
	reg.AddPointOfInterest(V3(2, 2, 0))
	reg.Freeze()
	if !reg.Frozen() || len(reg.PointsOfInterest()) != 1 {
		t.Fatal("point of interest not recorded")
	}
}
