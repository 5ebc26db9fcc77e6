package detectors

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/topostim/topostim/pkg/cache"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/observability"
	"github.com/topostim/topostim/pkg/stim"
)

// Database caches computed detector sets through a [cache.Cache]. The key
// is a fingerprint of the two measurement rounds the detectors are computed
// from, so structurally identical round pairs - which repeat constantly
// across depths, scales, and sweep points - are only matched once.
type Database struct {
	cache cache.Cache
	keyer cache.Keyer
	inner Computer
}

// NewDatabase wraps a computer with caching. A nil cache disables caching,
// a nil keyer uses the default, and a nil computer uses the matching
// computer.
func NewDatabase(c cache.Cache, keyer cache.Keyer, inner Computer) *Database {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if inner == nil {
		inner = MatchingComputer{}
	}
	return &Database{cache: c, keyer: keyer, inner: inner}
}

// Bound returns a [Computer] that consults the database under ctx. The
// annotation passes take a plain Computer, so the context is bound here.
func (d *Database) Bound(ctx context.Context) Computer {
	return boundDatabase{db: d, ctx: ctx}
}

type boundDatabase struct {
	db  *Database
	ctx context.Context
}

func (b boundDatabase) Compute(prev, cur *RoundMeasurements, radius int) ([]stim.Instruction, error) {
	return b.db.compute(b.ctx, prev, cur, radius)
}

func (d *Database) compute(ctx context.Context, prev, cur *RoundMeasurements, radius int) ([]stim.Instruction, error) {
	key := d.keyer.DetectorKey(fingerprintRounds(prev, cur), radius)

	if data, hit, err := d.cache.Get(ctx, key); err == nil && hit {
		if instructions, err := decodeInstructions(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "detectors")
			return instructions, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "detectors")

	instructions, err := d.inner.Compute(prev, cur, radius)
	if err != nil {
		return nil, err
	}

	if data, err := encodeInstructions(instructions); err == nil {
		if err := d.cache.Set(ctx, key, data, cache.TTLDetectors); err == nil {
			observability.Cache().OnCacheSet(ctx, "detectors", len(data))
		}
	}
	return instructions, nil
}

// fingerprintRounds produces a deterministic digest of a round pair. Two
// pairs with the same fingerprint yield identical detector sets, since the
// matcher reads nothing else.
func fingerprintRounds(prev, cur *RoundMeasurements) string {
	var b strings.Builder
	writeRound(&b, prev)
	b.WriteByte('|')
	writeRound(&b, cur)
	return cache.Hash([]byte(b.String()))
}

func writeRound(b *strings.Builder, r *RoundMeasurements) {
	if r == nil {
		b.WriteString("nil")
		return
	}
	fmt.Fprintf(b, "t%d", r.Total)
	for _, a := range r.Ancillas {
		fmt.Fprintf(b, ";a%s%c%d", a.Pos, a.Basis, a.Index)
		for _, c := range a.Corners {
			fmt.Fprintf(b, "+%s", c)
		}
	}
	for _, pos := range sortedPositions(r.Data) {
		m := r.Data[pos]
		fmt.Fprintf(b, ";d%s%c%d", m.Pos, m.Basis, m.Index)
	}
	resets := make([]grid.Position2D, 0, len(r.Resets))
	for pos := range r.Resets {
		resets = append(resets, pos)
	}
	sort.Slice(resets, func(i, j int) bool { return resets[i].Less(resets[j]) })
	for _, pos := range resets {
		fmt.Fprintf(b, ";r%s%c", pos, r.Resets[pos])
	}
}

func sortedPositions(m map[grid.Position2D]DataMeasurement) []grid.Position2D {
	out := make([]grid.Position2D, 0, len(m))
	for pos := range m {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// cachedInstruction is the serialized form of one detector instruction.
type cachedInstruction struct {
	Name    string            `json:"name"`
	Args    []float64         `json:"args,omitempty"`
	Targets []stim.GateTarget `json:"targets,omitempty"`
}

func encodeInstructions(instructions []stim.Instruction) ([]byte, error) {
	out := make([]cachedInstruction, len(instructions))
	for i, ins := range instructions {
		out[i] = cachedInstruction{Name: ins.Name, Args: ins.Args, Targets: ins.Targets}
	}
	return json.Marshal(out)
}

func decodeInstructions(data []byte) ([]stim.Instruction, error) {
	var cached []cachedInstruction
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	out := make([]stim.Instruction, len(cached))
	for i, c := range cached {
		out[i] = stim.NewInstruction(c.Name, c.Targets, c.Args...)
	}
	return out, nil
}
