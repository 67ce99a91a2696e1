package game

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

func TestMoveKeys(t *testing.T) {
	cases := []struct {
		name string
		keys moveKeys
		want sim.Move
	}{
		{"none", moveKeys{}, sim.Move{}},
		{"forward", moveKeys{Forward: true}, sim.Move{Forward: 1}},
		{"back", moveKeys{Back: true}, sim.Move{Forward: -1}},
		{"opposed cancel", moveKeys{Forward: true, Back: true}, sim.Move{}},
		{"strafe right", moveKeys{Right: true}, sim.Move{Strafe: 1}},
		{"diagonal", moveKeys{Forward: true, Left: true}, sim.Move{Forward: 1, Strafe: -1}},
	}
	for _, c := range cases {
		if got := c.keys.Move(); got != c.want {
			t.Errorf("%s: got %+v, want %+v", c.name, got, c.want)
		}
	}
}

func TestTurnKeys(t *testing.T) {
	look := sim.NewLook(0)
	turnKeys{Left: true}.apply(look, 0.05)
	if math.Abs(look.Yaw-0.05) > 1e-9 {
		t.Fatalf("left should add yaw, got %.4f", look.Yaw)
	}
	turnKeys{Right: true}.apply(look, 0.05)
	turnKeys{Right: true}.apply(look, 0.05)
	if math.Abs(look.Yaw+0.05) > 1e-9 {
		t.Fatalf("right should subtract yaw, got %.4f", look.Yaw)
	}
	for i := 0; i < 100; i++ {
		turnKeys{Up: true}.apply(look, 0.05)
	}
	if look.Pitch != sim.MaxPitch {
		t.Fatalf("pitch should clamp at %.3f, got %.3f", sim.MaxPitch, look.Pitch)
	}
}

func TestPointerDelta(t *testing.T) {
	var p pointer
	if dx, dy := p.delta(100, 100); dx != 0 || dy != 0 {
		t.Fatalf("first sample should be zero, got %.0f,%.0f", dx, dy)
	}
	if dx, dy := p.delta(110, 95); dx != 10 || dy != -5 {
		t.Fatalf("expected 10,-5 got %.0f,%.0f", dx, dy)
	}
	p.reset()
	if dx, _ := p.delta(0, 0); dx != 0 {
		t.Fatalf("sample after reset should be zero, got %.0f", dx)
	}
}

func TestKeyEdges(t *testing.T) {
	k := newKeyEdges()
	if !k.pressed(ebiten.KeyR, true) {
		t.Fatal("first down should be a press")
	}
	k.next()
	if k.pressed(ebiten.KeyR, true) {
		t.Fatal("held key should not press again")
	}
	k.next()
	k.pressed(ebiten.KeyR, false)
	k.next()
	if !k.pressed(ebiten.KeyR, true) {
		t.Fatal("release then down should press")
	}
}

func TestClockFormat(t *testing.T) {
	for sec, want := range map[int]string{720: "12:00", 59: "0:59", 61: "1:01", -3: "0:00"} {
		if got := clock(sec); got != want {
			t.Errorf("clock(%d) = %q, want %q", sec, got, want)
		}
	}
}
