package level

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

func countWalls(d Description) int {
	n := 0
	for _, row := range d.Grid {
		n += strings.Count(row, "1")
	}
	return n
}

func TestDefault_IsValid(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())
	cols, rows := d.Size()
	assert.Equal(t, 15, cols)
	assert.Equal(t, 13, rows)
}

func TestBuild_DefaultSpawnsAreFree(t *testing.T) {
	tun := sim.DefaultTuning()
	reg, spawns, err := Default().Build(tun)
	require.NoError(t, err)

	assert.Len(t, reg.Walls(), countWalls(Default()))
	assert.False(t, reg.Frozen(), "the session freezes the registry, not the builder")

	col := sim.NewCollider(reg)
	assert.False(t, col.WouldCollide(spawns.Player, tun.PlayerExtents), "player spawn blocked")
	assert.False(t, col.WouldCollide(spawns.Agent, tun.AgentExtents), "agent spawn blocked")
	assert.Equal(t, tun.PlayerEyeHeight, spawns.Player.Y)
	assert.Equal(t, tun.AgentGroundY, spawns.Agent.Y)
}

func TestBuild_ProceduralIsSeeded(t *testing.T) {
	tun := sim.DefaultTuning()
	a, _, err := Default().Build(tun)
	require.NoError(t, err)
	b, _, err := Default().Build(tun)
	require.NoError(t, err)

	assert.Equal(t, a.Props(), b.Props())
	assert.Equal(t, a.PointsOfInterest(), b.PointsOfInterest())
}

func TestBuild_NoProceduralMeansNoDecoration(t *testing.T) {
	d := Default()
	d.Procedural = nil
	reg, _, err := d.Build(sim.DefaultTuning())
	require.NoError(t, err)
	assert.Empty(t, reg.Props())
	assert.Empty(t, reg.PointsOfInterest())
}

func TestBuild_WindowFacesOpenCell(t *testing.T) {
	d := Description{
		CellSize:    4,
		WallHeight:  4,
		Grid:        []string{"111", "101", "111"},
		PlayerSpawn: Point{X: 4, Z: 4},
		AgentSpawn:  Point{X: 4, Z: 4},
		Procedural:  &Procedural{Seed: 1, WindowChance: 1},
	}
	reg, _, err := d.Build(sim.DefaultTuning())
	require.NoError(t, err)
	require.NotEmpty(t, reg.PointsOfInterest())

	// Every window sits just proud of a wall face, inside the centre cell.
	for _, p := range reg.PointsOfInterest() {
		assert.InDelta(t, 1.99, sim.HorizontalDistance(p, sim.V3(4, 0, 4)), 1e-9, "window at %+v", p)
	}
	// Corner walls have no open neighbour.
	assert.Len(t, reg.PointsOfInterest(), 4)
}

func TestBuild_ExplicitProps(t *testing.T) {
	d := Default()
	d.Procedural = nil
	d.Props = []Prop{{Kind: PropTable, X: 20, Z: 20}, {Kind: PropArcade, X: 24, Z: 20, Yaw: 0.5}}
	d.Windows = []Point{{X: 2.01, Z: 20}}
	reg, _, err := d.Build(sim.DefaultTuning())
	require.NoError(t, err)
	require.Len(t, reg.Props(), 2)
	assert.Equal(t, 0.5, reg.Props()[0].Box.Half.Y)
	assert.Equal(t, 0.5, reg.Props()[1].Yaw)
	assert.Len(t, reg.PointsOfInterest(), 1)
}

const sampleLevel = `
name: corridor
cell_size: 4
grid:
  - "11111"
  - "10001"
  - "11111"
player_spawn: {x: 4, z: 4}
agent_spawn: {x: 12, z: 4}
agent_yaw: 3.14
props:
  - {kind: table, x: 8, z: 4}
windows:
  - {x: 8, z: 2.01}
procedural: {seed: 7, window_chance: 0.2}
`

func TestParse_Valid(t *testing.T) {
	d, err := Parse([]byte(sampleLevel))
	require.NoError(t, err)
	assert.Equal(t, "corridor", d.Name)
	assert.Equal(t, DefaultWallHeight, d.WallHeight)
	assert.Equal(t, 3.14, d.AgentYaw)
	require.NotNil(t, d.Procedural)
	assert.Equal(t, int64(7), d.Procedural.Seed)
	assert.Len(t, d.Props, 1)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad grid char":   strings.Replace(sampleLevel, `"10001"`, `"10x01"`, 1),
		"unknown prop":    strings.Replace(sampleLevel, "kind: table", "kind: sofa", 1),
		"missing cells":   strings.Replace(sampleLevel, "cell_size: 4\n", "", 1),
		"unknown field":   sampleLevel + "lights: 3\n",
		"chance too high": strings.Replace(sampleLevel, "window_chance: 0.2", "window_chance: 2", 1),
		"spawn in wall":   strings.Replace(sampleLevel, "player_spawn: {x: 4, z: 4}", "player_spawn: {x: 0, z: 0}", 1),
		"ragged grid":     strings.Replace(sampleLevel, `"10001"`, `"1001"`, 1),
		"not yaml":        "grid: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleLevel), 0o600))
	d, err := Load(path)
	require.NoError(t, err)
	_, _, err = d.Build(sim.DefaultTuning())
	require.NoError(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCellAt(t *testing.T) {
	d := Default()
	col, row := d.CellAt(12, 4)
	assert.Equal(t, 3, col)
	assert.Equal(t, 1, row)
	assert.True(t, d.IsWall(-1, 0), "outside the grid counts as wall")
	assert.True(t, d.IsOpen(52, 40))
}

func TestResolve(t *testing.T) {
	d, err := Resolve("", 0)
	require.NoError(t, err)
	assert.Equal(t, "pizzeria", d.Name)
	assert.Equal(t, int64(1), d.Procedural.Seed)

	d, err = Resolve("", 77)
	require.NoError(t, err)
	assert.Equal(t, int64(77), d.Procedural.Seed)
	assert.Equal(t, int64(1), Default().Procedural.Seed, "default must not be shared")

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.yaml"), 0)
	assert.Error(t, err)
}

func TestShippedLevels(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "levels", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		t.Run(filepath.Base(p), func(t *testing.T) {
			d, err := Load(p)
			require.NoError(t, err)
			reg, spawns, err := d.Build(sim.DefaultTuning())
			require.NoError(t, err)
			col := sim.NewCollider(reg)
			assert.False(t, col.WouldCollide(spawns.Player, sim.DefaultTuning().PlayerExtents))
			assert.False(t, col.WouldCollide(spawns.Agent, sim.DefaultTuning().AgentExtents))
		})
	}
}
