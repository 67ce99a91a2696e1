// Package level describes the static layout a session is played in and
// turns it into a frozen-ready geometry registry.
package level

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Night-Watch/internal/sim"
)

//go:embed level.schema.json
var schemaJSON string

// Prop kinds.
const (
	PropTable  = "table"
	PropArcade = "arcade"
)

// Point is a ground-plane position. Y is informational; actors are placed
// at their tuned heights.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Z float64 `yaml:"z" json:"z"`
}

// Prop is one piece of furniture.
type Prop struct {
	Kind string  `yaml:"kind" json:"kind"`
	X    float64 `yaml:"x" json:"x"`
	Z    float64 `yaml:"z" json:"z"`
	Yaw  float64 `yaml:"yaw,omitempty" json:"yaw,omitempty"`
}

// Procedural enables seeded decoration on top of the explicit layout.
// Chances are per cell.
type Procedural struct {
	Seed           int64   `yaml:"seed" json:"seed"`
	WindowChance   float64 `yaml:"window_chance" json:"window_chance"`
	TableChance    float64 `yaml:"table_chance" json:"table_chance"`
	ArcadeChance   float64 `yaml:"arcade_chance" json:"arcade_chance"`
	SpawnClearance float64 `yaml:"spawn_clearance" json:"spawn_clearance"`
}

// Description is a level: a grid of wall and open cells with a uniform cell
// size, actor spawns and decoration. Cell (col, row) is centred on
// (col·CellSize, row·CellSize).
type Description struct {
	Name        string      `yaml:"name,omitempty"`
	CellSize    float64     `yaml:"cell_size"`
	WallHeight  float64     `yaml:"wall_height"`
	Grid        []string    `yaml:"grid"`
	PlayerSpawn Point       `yaml:"player_spawn"`
	PlayerYaw   float64     `yaml:"player_yaw"`
	AgentSpawn  Point       `yaml:"agent_spawn"`
	AgentYaw    float64     `yaml:"agent_yaw"`
	Props       []Prop      `yaml:"props,omitempty"`
	Windows     []Point     `yaml:"windows,omitempty"`
	Procedural  *Procedural `yaml:"procedural,omitempty"`
}

// DefaultWallHeight applies when a file leaves wall_height out.
const DefaultWallHeight = 4.0

// Default returns the reference maze.
func Default() Description {
	return Description{
		Name:       "pizzeria",
		CellSize:   4,
		WallHeight: DefaultWallHeight,
		Grid: []string{
			"111111111111111",
			"100001000000001",
			"101101011111101",
			"101000000000101",
			"101011110110101",
			"100000000000001",
			"101110111101101",
			"100010000001001",
			"111011101111011",
			"100000000000001",
			"101111111111101",
			"100000000000001",
			"111111111111111",
		},
		PlayerSpawn: Point{X: 12, Y: 1.5, Z: 4},
		AgentSpawn:  Point{X: 52, Y: -0.8, Z: 40},
		Procedural: &Procedural{
			Seed:           1,
			WindowChance:   0.2,
			TableChance:    0.1,
			ArcadeChance:   0.05,
			SpawnClearance: 5,
		},
	}
}

// Load reads, schema-checks and validates a level file.
func Load(path string) (Description, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Description{}, err
	}
	d, err := Parse(raw)
	if err != nil {
		return d, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Resolve returns the level at path, or the built-in maze when path is
// empty. A non-zero seed replaces the decoration seed.
func Resolve(path string, seed int64) (Description, error) {
	d := Default()
	if path != "" {
		var err error
		if d, err = Load(path); err != nil {
			return d, err
		}
	}
	if seed != 0 && d.Procedural != nil {
		d.Procedural.Seed = seed
	}
	return d, nil
}

// Parse decodes a YAML level.
func Parse(raw []byte) (Description, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Description{}, fmt.Errorf("level: %w", err)
	}
	if err := validateSchema(doc); err != nil {
		return Description{}, fmt.Errorf("level schema: %w", err)
	}
	d := Description{WallHeight: DefaultWallHeight}
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Description{}, fmt.Errorf("level: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Description{}, fmt.Errorf("level: %w", err)
	}
	return d, nil
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("level.schema.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("level.schema.json")
	})
	return schema, schemaErr
}

// validateSchema checks a decoded YAML document. The validator expects JSON
// values, so the document is re-encoded first.
func validateSchema(doc any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return s.Validate(v)
}

// Validate checks the structural rules the schema cannot express.
func (d Description) Validate() error {
	if d.CellSize <= 0 {
		return errors.New("cell_size must be positive")
	}
	if d.WallHeight <= 0 {
		return errors.New("wall_height must be positive")
	}
	if len(d.Grid) == 0 {
		return errors.New("grid is empty")
	}
	width := len(d.Grid[0])
	for i, row := range d.Grid {
		if len(row) != width {
			return fmt.Errorf("grid row %d has width %d, want %d", i, len(row), width)
		}
		if strings.Trim(row, "01") != "" {
			return fmt.Errorf("grid row %d: only '0' and '1' are allowed", i)
		}
	}
	if !d.IsOpen(d.PlayerSpawn.X, d.PlayerSpawn.Z) {
		return fmt.Errorf("player spawn (%.1f,%.1f) is not in an open cell", d.PlayerSpawn.X, d.PlayerSpawn.Z)
	}
	if !d.IsOpen(d.AgentSpawn.X, d.AgentSpawn.Z) {
		return fmt.Errorf("agent spawn (%.1f,%.1f) is not in an open cell", d.AgentSpawn.X, d.AgentSpawn.Z)
	}
	for i, p := range d.Props {
		if p.Kind != PropTable && p.Kind != PropArcade {
			return fmt.Errorf("prop %d: unknown kind %q", i, p.Kind)
		}
	}
	return nil
}

// Size returns the grid dimensions in cells.
func (d Description) Size() (cols, rows int) {
	if len(d.Grid) == 0 {
		return 0, 0
	}
	return len(d.Grid[0]), len(d.Grid)
}

// CellAt returns the cell containing a world position.
func (d Description) CellAt(x, z float64) (col, row int) {
	return int(math.Round(x / d.CellSize)), int(math.Round(z / d.CellSize))
}

// IsWall reports whether a cell is a wall. Cells outside the grid count as
// walls.
func (d Description) IsWall(col, row int) bool {
	cols, rows := d.Size()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return true
	}
	return d.Grid[row][col] == '1'
}

// IsOpen reports whether the world position lies in an open cell.
func (d Description) IsOpen(x, z float64) bool {
	return !d.IsWall(d.CellAt(x, z))
}

// Build populates a registry from the description and returns the spawns.
// The registry is left unfrozen; the session freezes it.
func (d Description) Build(t sim.Tuning) (*sim.Registry, sim.Spawns, error) {
	if err := d.Validate(); err != nil {
		return nil, sim.Spawns{}, err
	}
	reg := sim.NewRegistry(t.WallPrune, t.PropPrune)
	cs := d.CellSize

	var rng *rand.Rand
	if d.Procedural != nil {
		rng = rand.New(rand.NewSource(d.Procedural.Seed)) // #nosec G404 -- level decoration
	}

	type cell struct{ col, row int }
	var open []cell
	cols, rows := d.Size()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if !d.IsWall(col, row) {
				open = append(open, cell{col, row})
				continue
			}
			reg.Register(d.wallVolume(col, row))
			if rng != nil && rng.Float64() < d.Procedural.WindowChance {
				if p, ok := d.windowFor(col, row); ok {
					reg.AddPointOfInterest(p)
				}
			}
		}
	}

	for _, p := range d.Props {
		reg.Register(propVolume(p))
	}
	for _, w := range d.Windows {
		reg.AddPointOfInterest(sim.V3(w.X, d.WallHeight/2, w.Z))
	}

	if rng != nil {
		pr := d.Procedural
		for _, c := range open {
			x, z := float64(c.col)*cs, float64(c.row)*cs
			if d.nearSpawn(x, z, pr.SpawnClearance) {
				continue
			}
			if rng.Float64() < pr.TableChance {
				reg.Register(propVolume(Prop{Kind: PropTable, X: x, Z: z}))
			} else if rng.Float64() < pr.ArcadeChance {
				jx := (rng.Float64() - 0.5) * cs / 2
				jz := (rng.Float64() - 0.5) * cs / 2
				reg.Register(propVolume(Prop{Kind: PropArcade, X: x + jx, Z: z + jz, Yaw: rng.Float64() * math.Pi}))
			}
		}
	}

	spawns := sim.Spawns{
		Player:    sim.V3(d.PlayerSpawn.X, t.PlayerEyeHeight, d.PlayerSpawn.Z),
		PlayerYaw: d.PlayerYaw,
		Agent:     sim.V3(d.AgentSpawn.X, t.AgentGroundY, d.AgentSpawn.Z),
		AgentYaw:  d.AgentYaw,
	}
	return reg, spawns, nil
}

func (d Description) wallVolume(col, row int) sim.Volume {
	cs, h := d.CellSize, d.WallHeight
	box := sim.AABB{
		Center: sim.V3(float64(col)*cs, h/2, float64(row)*cs),
		Half:   sim.V3(cs/2, h/2, cs/2),
	}
	return sim.NewVolume(sim.KindWall, box, 0)
}

// windowFor places a window on the first face of a wall cell that looks
// onto an open cell, just proud of the wall surface.
func (d Description) windowFor(col, row int) (sim.Vec3, bool) {
	dirs := [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	cols, rows := d.Size()
	offset := d.CellSize/2 + 0.01
	for _, dir := range dirs {
		nc, nr := col+dir[0], row+dir[1]
		if nc < 0 || nr < 0 || nc >= cols || nr >= rows || d.IsWall(nc, nr) {
			continue
		}
		return sim.V3(
			float64(col)*d.CellSize+float64(dir[0])*offset,
			d.WallHeight/2,
			float64(row)*d.CellSize+float64(dir[1])*offset,
		), true
	}
	return sim.Vec3{}, false
}

// nearSpawn keeps generated furniture off both spawn points.
func (d Description) nearSpawn(x, z, clearance float64) bool {
	for _, s := range []Point{d.PlayerSpawn, d.AgentSpawn} {
		if math.Abs(x-s.X) < clearance && math.Abs(z-s.Z) < clearance {
			return true
		}
	}
	return false
}

func propVolume(p Prop) sim.Volume {
	var box sim.AABB
	switch p.Kind {
	case PropArcade:
		box = sim.AABB{Center: sim.V3(p.X, 1, p.Z), Half: sim.V3(0.6, 1, 0.6)}
	default:
		box = sim.AABB{Center: sim.V3(p.X, 0.5, p.Z), Half: sim.V3(0.8, 0.5, 0.8)}
	}
	return sim.NewVolume(sim.KindProp, box, p.Yaw)
}
