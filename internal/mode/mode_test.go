package mode

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/tomz197/peckplay/internal/asset"
	"github.com/tomz197/peckplay/internal/draw"
	"github.com/tomz197/peckplay/internal/object"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"target", KindTarget, false},
		{"FALLING", KindFalling, false},
		{"Ambient", KindAmbient, false},
		{"pong", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKindNextCycles(t *testing.T) {
	k := KindTarget
	for range Kinds() {
		k = k.Next()
	}
	if k != KindTarget {
		t.Fatalf("cycling through every kind ended at %v", k)
	}
	for _, k := range Kinds() {
		if got, err := ParseKind(k.String()); err != nil || got != k {
			t.Errorf("round trip of %v = %v, %v", k, got, err)
		}
	}
}

func TestNewKinds(t *testing.T) {
	for _, k := range Kinds() {
		m := New(k, asset.DefaultAssets(), newRand())
		if m.Kind() != k {
			t.Errorf("New(%v).Kind() = %v", k, m.Kind())
		}
	}
}

func TestInterval(t *testing.T) {
	iv := NewInterval(100 * time.Millisecond)
	if iv.Due(at(1000)) != 0 {
		t.Fatal("stopped interval fired")
	}

	iv.Start(at(0))
	if n := iv.Due(at(99)); n != 0 {
		t.Errorf("Due(99) = %d, want 0", n)
	}
	if n := iv.Due(at(100)); n != 1 {
		t.Errorf("Due(100) = %d, want 1", n)
	}
	if n := iv.Due(at(350)); n != 2 {
		t.Errorf("Due(350) = %d, want 2 (200 and 300)", n)
	}

	iv.Stop()
	if n := iv.Due(at(1000)); n != 0 {
		t.Errorf("Due after Stop = %d, want 0", n)
	}
}

func TestDelay(t *testing.T) {
	d := NewDelay(400 * time.Millisecond)
	d.Start(at(0))

	if d.Fired(at(399)) {
		t.Error("fired early")
	}
	if got := d.Remaining(at(100)); got != 300*time.Millisecond {
		t.Errorf("Remaining = %v, want 300ms", got)
	}
	if !d.Fired(at(400)) {
		t.Error("did not fire at the deadline")
	}
	if d.Fired(at(500)) {
		t.Error("fired twice")
	}

	d.Start(at(1000))
	d.Stop()
	if d.Fired(at(2000)) {
		t.Error("stopped delay fired")
	}
}

// run ticks m every step from start to end inclusive. pecks maps a tick
// time in ms to the peck counter value that becomes visible at that time.
func run(t *testing.T, m Mode, start, end, step int, pecks map[int]uint64) {
	t.Helper()
	var counter uint64
	for ms := start; ms <= end; ms += step {
		if v, ok := pecks[ms]; ok {
			counter = v
		}
		if err := m.Update(Tick{Now: at(ms), Peck: counter}); err != nil {
			t.Fatalf("Update at %dms: %v", ms, err)
		}
	}
}

func TestTargetScoresEveryPeck(t *testing.T) {
	m := NewTarget(asset.DefaultAssets(), newRand())
	m.Activate(Tick{Now: at(0)})

	pecks := map[int]uint64{500: 1, 1000: 2, 1500: 3, 2000: 4, 2500: 5}
	run(t, m, 0, 3000, 10, pecks)

	if m.Score() != 5 {
		t.Fatalf("score = %d, want 5", m.Score())
	}
}

func TestTargetIgnoresPecksWhileHit(t *testing.T) {
	m := NewTarget(asset.DefaultAssets(), newRand())
	m.Activate(Tick{Now: at(0)})

	// Second peck lands inside the 400ms hit window.
	run(t, m, 0, 1000, 10, map[int]uint64{100: 1, 300: 2})
	if m.Score() != 1 {
		t.Fatalf("score = %d, want 1", m.Score())
	}

	// The ignored peck must not be replayed once the bug is idle again.
	if m.Bug().Hit {
		t.Fatal("bug still hit after the recovery delay")
	}
	run(t, m, 1010, 1500, 10, map[int]uint64{1010: 2})
	if m.Score() != 1 {
		t.Fatalf("score after idle ticks = %d, want 1", m.Score())
	}
}

func TestTargetHitBurst(t *testing.T) {
	m := NewTarget(asset.DefaultAssets(), newRand())
	m.Activate(Tick{Now: at(0)})

	x, y := m.Bug().X, m.Bug().Y
	if err := m.Update(Tick{Now: at(16), Peck: 1}); err != nil {
		t.Fatal(err)
	}
	if !m.Bug().Hit {
		t.Fatal("bug not marked hit")
	}
	if got := len(m.Particles()); got != targetBurst.Count {
		t.Fatalf("burst has %d particles, want %d", got, targetBurst.Count)
	}

	// Bug respawns 400ms after the hit.
	run(t, m, 32, 415, 1, nil)
	if !m.Bug().Hit {
		t.Fatal("bug respawned before the delay")
	}
	run(t, m, 416, 420, 1, nil)
	if m.Bug().Hit {
		t.Fatal("bug did not respawn after the delay")
	}
	if m.Bug().X == x && m.Bug().Y == y {
		t.Error("bug respawned at the same position")
	}
}

func TestTargetWanders(t *testing.T) {
	m := NewTarget(asset.DefaultAssets(), newRand())
	m.Activate(Tick{Now: at(0)})
	x, y := m.Bug().X, m.Bug().Y

	run(t, m, 0, 2490, 10, nil)
	if m.Bug().X != x || m.Bug().Y != y {
		t.Fatal("bug moved before the interval")
	}
	run(t, m, 2500, 2500, 10, nil)
	bx, by := m.Bug().X, m.Bug().Y
	if bx == x && by == y {
		t.Fatal("bug did not move at the interval")
	}
	if bx < targetMin || bx > targetMax || by < targetMin || by > targetMax {
		t.Errorf("bug at (%v, %v), outside [%v, %v]", bx, by, targetMin, targetMax)
	}
}

func TestTargetDeactivateStopsTimers(t *testing.T) {
	m := NewTarget(asset.DefaultAssets(), newRand())
	m.Activate(Tick{Now: at(0)})
	if err := m.Update(Tick{Now: at(10), Peck: 1}); err != nil {
		t.Fatal(err)
	}

	m.Deactivate()
	if m.Bug().Hit {
		t.Error("bug left mid-hit after deactivation")
	}
	x, y := m.Bug().X, m.Bug().Y
	run(t, m, 20, 10000, 100, map[int]uint64{20: 1})
	if m.Bug().X != x || m.Bug().Y != y {
		t.Error("inactive bug kept wandering")
	}
}

func TestFallingSpawnCadence(t *testing.T) {
	m := NewFalling(asset.DefaultAssets(), newRand())
	m.Activate(Tick{Now: at(0)})

	run(t, m, 0, 6000, 10, nil)
	if m.Spawned() != 5 {
		t.Fatalf("spawned %d items over 6000ms, want 5", m.Spawned())
	}
	for _, item := range m.Items() {
		if item.X < 10 || item.X > 90 {
			t.Errorf("item %d spawned at x=%v, outside [10, 90]", item.ID, item.X)
		}
		if item.Speed < 0.3 || item.Speed > 1.1 {
			t.Errorf("item %d speed %v outside [0.3, 1.1]", item.ID, item.Speed)
		}
	}
}

func TestFallingDeactivateStopsSpawner(t *testing.T) {
	m := NewFalling(asset.DefaultAssets(), newRand())
	m.Activate(Tick{Now: at(0)})
	run(t, m, 0, 1200, 10, nil)

	m.Deactivate()
	if len(m.Items()) != 0 {
		t.Fatalf("%d items left after deactivation", len(m.Items()))
	}
	run(t, m, 1210, 10000, 10, nil)
	if m.Spawned() != 1 {
		t.Fatalf("spawned %d items, want 1", m.Spawned())
	}
}

func TestFallingPeckResolution(t *testing.T) {
	rng := newRand()
	m := NewFalling(asset.DefaultAssets(), rng)
	m.Activate(Tick{Now: at(0)})

	const inBand = 1000
	for i := 0; i < inBand; i++ {
		m.items = append(m.items, object.NewFallingItem(uint64(i+1), 50, 50, 0, 0, 0, "", draw.White, rng))
	}
	above := object.NewFallingItem(9999, 50, 5, 1, 0, 0, "", draw.White, rng)
	m.items = append(m.items, above)

	if err := m.Update(Tick{Now: at(16), Peck: 1}); err != nil {
		t.Fatal(err)
	}

	if !m.Shaking(at(16)) || m.Shaking(at(216)) {
		t.Error("shake should last 200ms")
	}
	if above.Speed != 0.5 || !above.Broken {
		t.Errorf("out-of-band item: speed=%v broken=%v, want bounced", above.Speed, above.Broken)
	}

	popped := m.Score()
	if popped+len(m.Items()) != inBand+1 {
		t.Fatalf("popped %d + kept %d != %d", popped, len(m.Items()), inBand+1)
	}
	if frac := float64(popped) / inBand; frac < 0.5 || frac > 0.7 {
		t.Errorf("explode fraction = %.3f, want ~0.6", frac)
	}
	for _, item := range m.Items() {
		if item.ID != above.ID && (item.Y != 45 || item.Speed != 0) {
			t.Fatalf("item %d at y=%v speed=%v, want bounced to 45", item.ID, item.Y, item.Speed)
		}
	}

	// The same counter value is never processed twice.
	before := m.Score()
	if err := m.Update(Tick{Now: at(32), Peck: 1}); err != nil {
		t.Fatal(err)
	}
	if m.Score() != before {
		t.Error("peck reprocessed on a later tick")
	}
}

func TestAmbientDisturbance(t *testing.T) {
	m := NewAmbient(newRand())
	m.orbs = []*object.Orb{
		{X: 600, Y: 400},             // On the point
		{X: 700, Y: 400},             // 100 away
		{X: 1000, Y: 400},            // Exactly at the radius
		{X: 600, Y: 400 + 399.99999}, // Just inside
		{X: 900, Y: 700},             // Neighbouring grid cell, 424 away
	}

	m.Disturb(600, 400)

	tests := []struct {
		name string
		orb  *object.Orb
		want float64
	}{
		{"at point", m.orbs[0], DisturbRadius / DisturbFalloff},
		{"100 away", m.orbs[1], 300 / DisturbFalloff},
		{"at radius", m.orbs[2], 0},
		{"diagonal outside", m.orbs[4], 0},
	}
	for _, tt := range tests {
		got := math.Hypot(tt.orb.VX, tt.orb.VY)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: impulse magnitude = %v, want %v", tt.name, got, tt.want)
		}
	}
	if m.orbs[1].VX <= 0 || m.orbs[1].VY != 0 {
		t.Errorf("orb to the right pushed (%v, %v), want +x", m.orbs[1].VX, m.orbs[1].VY)
	}
	if m.orbs[3].VY <= 0 {
		t.Errorf("orb just inside the radius not pushed: vy=%v", m.orbs[3].VY)
	}
}

func TestAmbientPeckMovesOrbs(t *testing.T) {
	m := NewAmbient(newRand())
	m.Activate(Tick{Now: at(0)})
	if len(m.Orbs()) != AmbientOrbs {
		t.Fatalf("%d orbs, want %d", len(m.Orbs()), AmbientOrbs)
	}

	run(t, m, 0, 2000, 16, map[int]uint64{16: 1, 512: 2})
	if m.Score() != 2 {
		t.Fatalf("disturbances = %d, want 2", m.Score())
	}
	for i, o := range m.Orbs() {
		if o.X < 0 || o.X > AmbientWidth || o.Y < 0 || o.Y > AmbientHeight {
			t.Errorf("orb %d escaped to (%v, %v)", i, o.X, o.Y)
		}
		if math.Hypot(o.VX, o.VY) > MaxOrbSpeed+1e-9 {
			t.Errorf("orb %d speed above cap", i)
		}
	}
}

func TestModesDraw(t *testing.T) {
	canvas := draw.NewScaledCanvas(80, 24, 100, 100)
	ctx := object.DrawContext{Canvas: canvas, Now: at(0), PixelSize: 100.0 / 480}
	for _, k := range Kinds() {
		m := New(k, asset.DefaultAssets(), newRand())
		m.Activate(Tick{Now: at(0)})
		run(t, m, 0, 3000, 50, map[int]uint64{1300: 1})
		if err := m.Draw(ctx); err != nil {
			t.Errorf("%v: Draw: %v", k, err)
		}
	}
}
