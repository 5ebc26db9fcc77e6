package tree

import (
	"sort"

	"github.com/topostim/topostim/pkg/detectors"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/layers"
	"github.com/topostim/topostim/pkg/rpng"
	"github.com/topostim/topostim/pkg/stim"
)

// ancillaInfo captures what detector inference needs to know about one
// stabilizer measurement of the layer.
type ancillaInfo struct {
	basis   rpng.Basis
	corners []grid.Position2D
}

// measured is one measurement in circuit emission order.
type measured struct {
	pos   grid.Position2D
	basis rpng.Basis
}

// realizeLayout turns a merged layout layer into a concrete circuit fragment
// at scale k, together with its qubit map and measurement record.
func (t *Tree) realizeLayout(l *layers.LayoutLayer, k int64) (*Annotation, error) {
	var (
		gates       []rpng.TimedGate
		ancillas    = make(map[grid.Position2D]ancillaInfo)
		rawCircuits []*stim.Circuit
		rawMaps     []*stim.QubitMap
	)

	for _, pos := range l.Positions() {
		section, _ := l.SectionAt(pos)
		switch s := section.(type) {
		case *layers.PlaquetteLayer:
			ox, oy := layers.SectionCellOrigin(pos)
			origin := grid.Position2D{X: 2 * ox.IntegerEval(k), Y: 2 * oy.IntegerEval(k)}
			active, err := s.ActivePlaquettes(k, origin)
			if err != nil {
				return nil, err
			}
			for _, ancilla := range sortedPositions(active) {
				desc := active[ancilla]
				translated, err := t.translator.Translate(desc, ancilla)
				if err != nil {
					return nil, err
				}
				gates = append(gates, translated...)

				basis, ok := desc.StabilizerBasis()
				if !ok {
					return nil, errors.New(errors.ErrCodeInvalidRPNG,
						"plaquette %q at %s has no single stabilizer basis", desc, ancilla)
				}
				ancillas[ancilla] = ancillaInfo{basis: basis, corners: activeCorners(desc, ancilla)}
			}
		case *layers.RawCircuitLayer:
			c, m, err := s.Realize(k)
			if err != nil {
				return nil, err
			}
			rawCircuits = append(rawCircuits, c)
			rawMaps = append(rawMaps, m)
		default:
			return nil, errors.New(errors.ErrCodeInternal,
				"layout section at %s has unexpected kind %T", pos, section)
		}
	}

	qubitMap := buildQubitMap(gates, rawMaps)
	circuit, record, err := emit(gates, qubitMap)
	if err != nil {
		return nil, err
	}
	for i, raw := range rawCircuits {
		mapping, err := rawMaps[i].RemappingTo(qubitMap)
		if err != nil {
			return nil, err
		}
		remapped, err := raw.WithRemappedQubits(mapping)
		if err != nil {
			return nil, err
		}
		circuit.AppendCircuit(remapped)
		record.Total += int(remapped.NumMeasurements())
	}

	for i, m := range record.order {
		if info, ok := ancillas[m.pos]; ok {
			record.round.Ancillas = append(record.round.Ancillas, detectors.AncillaMeasurement{
				Pos:     m.pos,
				Basis:   info.basis,
				Corners: info.corners,
				Index:   i,
			})
			continue
		}
		record.round.Data[m.pos] = detectors.DataMeasurement{Pos: m.pos, Basis: m.basis, Index: i}
	}
	record.round.Total = record.Total
	sort.Slice(record.round.Ancillas, func(i, j int) bool {
		return record.round.Ancillas[i].Pos.Less(record.round.Ancillas[j].Pos)
	})

	return &Annotation{
		Circuit:      circuit,
		QubitMap:     qubitMap,
		Measurements: record.round,
	}, nil
}

// activeCorners returns the data-qubit positions of the corners that
// participate in the stabilizer (those with an entangling time).
func activeCorners(desc rpng.Description, ancilla grid.Position2D) []grid.Position2D {
	var out []grid.Position2D
	for i, w := range desc.Corners {
		if w.N == 0 {
			continue
		}
		off := rpng.CornerOffsets[i]
		out = append(out, grid.Position2D{X: ancilla.X + off.X, Y: ancilla.Y + off.Y})
	}
	return out
}

func sortedPositions(m map[grid.Position2D]rpng.Description) []grid.Position2D {
	out := make([]grid.Position2D, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func buildQubitMap(gates []rpng.TimedGate, rawMaps []*stim.QubitMap) *stim.QubitMap {
	var positions []grid.Position2D
	for _, g := range gates {
		positions = append(positions, g.Targets...)
	}
	for _, m := range rawMaps {
		positions = append(positions, m.Positions()...)
	}
	return stim.QubitMapFromPositions(positions)
}

// emitRecord tracks the measurement record as the round circuit is emitted.
type emitRecord struct {
	Total int
	order []measured
	round *detectors.RoundMeasurements
}

// emit lays the timed gates out slot by slot with scheduling barriers
// between slots. Within a slot, same-name single-qubit gates combine into
// one instruction with index-sorted targets; two-qubit gates keep their pair
// order, sorted by first target.
func emit(gates []rpng.TimedGate, qubitMap *stim.QubitMap) (*stim.Circuit, *emitRecord, error) {
	circuit := stim.NewCircuit()
	record := &emitRecord{round: &detectors.RoundMeasurements{
		Data:   make(map[grid.Position2D]detectors.DataMeasurement),
		Resets: make(map[grid.Position2D]rpng.Basis),
	}}

	byTime := make(map[int][]rpng.TimedGate)
	for _, g := range gates {
		byTime[g.Time] = append(byTime[g.Time], g)
	}

	for time := 0; time < rpng.TimesPerRound; time++ {
		slot := byTime[time]
		if len(slot) == 0 {
			continue
		}
		if !circuit.IsEmpty() {
			circuit.AppendTick()
		}
		if err := emitSlot(circuit, record, slot, qubitMap); err != nil {
			return nil, nil, err
		}
	}
	return circuit, record, nil
}

func emitSlot(circuit *stim.Circuit, record *emitRecord, slot []rpng.TimedGate, qubitMap *stim.QubitMap) error {
	byName := make(map[string][]rpng.TimedGate)
	var names []string
	for _, g := range slot {
		if _, ok := byName[g.Name]; !ok {
			names = append(names, g.Name)
		}
		byName[g.Name] = append(byName[g.Name], g)
	}
	sort.Strings(names)

	for _, name := range names {
		group := byName[name]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Targets[0].Less(group[j].Targets[0])
		})

		var (
			targets   []stim.GateTarget
			positions []grid.Position2D
			seen      = make(map[grid.Position2D]bool)
		)
		for _, g := range group {
			for _, pos := range g.Targets {
				if len(g.Targets) == 1 {
					// Single-qubit gates from overlapping plaquettes may
					// address the same qubit; keep one.
					if seen[pos] {
						continue
					}
					seen[pos] = true
				}
				idx, ok := qubitMap.Index(pos)
				if !ok {
					return errors.New(errors.ErrCodeQubitNotFound,
						"position %s is missing from the layer qubit map", pos)
				}
				targets = append(targets, stim.Qubit(idx))
				positions = append(positions, pos)
			}
		}
		if len(targets) == 0 {
			continue
		}
		instr := stim.NewInstruction(name, targets)
		circuit.AppendInstruction(instr)

		switch {
		case instr.IsMeasurement():
			basis := basisOfMeasurement(name)
			for _, pos := range positions {
				record.order = append(record.order, measured{pos: pos, basis: basis})
			}
			record.Total += len(positions)
		case name == "R" || name == "RX" || name == "RY":
			basis := basisOfReset(name)
			for _, pos := range positions {
				record.round.Resets[pos] = basis
			}
		}
	}
	return nil
}

func basisOfMeasurement(name string) rpng.Basis {
	switch name {
	case "MX", "MRX":
		return rpng.BasisX
	case "MY", "MRY":
		return rpng.BasisY
	default:
		return rpng.BasisZ
	}
}

func basisOfReset(name string) rpng.Basis {
	switch name {
	case "RX":
		return rpng.BasisX
	case "RY":
		return rpng.BasisY
	default:
		return rpng.BasisZ
	}
}
