package layers

import (
	"github.com/topostim/topostim/pkg/grid"
	"github.com/topostim/topostim/pkg/scalable"
	"github.com/topostim/topostim/pkg/stim"
)

// CircuitFactory realizes an injected circuit fragment at a concrete k,
// returning the fragment and the local qubit map its indices refer to.
type CircuitFactory func(k int64) (*stim.Circuit, *stim.QubitMap, error)

// RawCircuitLayer is an atomic layer holding a verbatim circuit factory
// instead of a template: used for injected or hand-written fragments whose
// structure the plaquette machinery cannot express. Spatial trimming is a
// no-op on raw layers; the factory owns its geometry.
type RawCircuitLayer struct {
	factory   CircuitFactory
	shape     scalable.Shape2D
	timesteps scalable.LinearFunction
}

var _ Atomic = (*RawCircuitLayer)(nil)

// NewRawCircuitLayer builds a raw layer from a factory and its declared
// scalable footprint.
func NewRawCircuitLayer(factory CircuitFactory, shape scalable.Shape2D, timesteps scalable.LinearFunction) *RawCircuitLayer {
	return &RawCircuitLayer{factory: factory, shape: shape, timesteps: timesteps}
}

// ScalableShape implements [Layer].
func (l *RawCircuitLayer) ScalableShape() scalable.Shape2D { return l.shape }

// ScalableTimesteps implements [Layer].
func (l *RawCircuitLayer) ScalableTimesteps() scalable.LinearFunction { return l.timesteps }

// Realize invokes the factory at the given k.
func (l *RawCircuitLayer) Realize(k int64) (*stim.Circuit, *stim.QubitMap, error) {
	return l.factory(k)
}

// WithSpatialBordersTrimmed implements [Layer]; raw layers have no template
// borders to strip, so the layer is returned unchanged.
func (l *RawCircuitLayer) WithSpatialBordersTrimmed(...grid.SignedDirection) (Layer, error) {
	return l, nil
}

// WithTemporalBordersReplaced implements [Layer].
func (l *RawCircuitLayer) WithTemporalBordersReplaced(replacements map[TemporalBorder]Layer) (Layer, error) {
	return atomicTemporalReplacement(l, replacements)
}

func (l *RawCircuitLayer) sealed() {}
func (l *RawCircuitLayer) atomic() {}
