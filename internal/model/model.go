package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/KuzmaKhrabrov/nequip/internal/config"
	"github.com/KuzmaKhrabrov/nequip/internal/data"
	"github.com/KuzmaKhrabrov/nequip/internal/device"
)

// Model is the eager form of the potential: mutable, introspectable, directly
// callable.
type Model struct {
	params   *Params
	training bool
	dev      device.Device

	// First-moment optimizer buffers left over from training. Deployment
	// strips these; they are never used at inference time.
	optimState []float32
}

// FromConfig constructs an initialized model for the given configuration and
// dataset. Weight initialization is seeded from the configuration so repeated
// runs build identical models.
func FromConfig(cfg *config.Config, ds *data.Dataset) (*Model, error) {
	numFeatures := cfg.GetInt("num_features", 16)
	numBasis := cfg.GetInt("num_basis", 8)
	numLayers := cfg.GetInt("num_layers", 3)
	if numFeatures <= 0 || numBasis <= 0 || numLayers <= 0 {
		return nil, fmt.Errorf("num_features, num_basis and num_layers must be positive")
	}
	numTypes := ds.NumTypes()
	if numTypes == 0 {
		return nil, fmt.Errorf("dataset has no atom types")
	}

	rng := rand.New(rand.NewSource(cfg.GetInt64("seed", 12345)))
	p := &Params{
		NumTypes:    numTypes,
		NumFeatures: numFeatures,
		NumBasis:    numBasis,
		NumLayers:   numLayers,
		RMax:        cfg.GetFloat("r_max", 4.0),
		Embedding:   randn(rng, numTypes*numFeatures, 1.0),
		ReadoutW:    randn(rng, numFeatures, 1.0/math.Sqrt(float64(numFeatures))),
		Scale:       ones(numTypes),
		Shift:       make([]float32, numTypes),
	}
	scale := 1.0 / math.Sqrt(float64(numFeatures))
	for l := 0; l < numLayers; l++ {
		p.Layers = append(p.Layers, LayerParams{
			SelfW:   randn(rng, numFeatures*numFeatures, scale),
			MsgW:    randn(rng, numFeatures*numFeatures, scale),
			RadialW: randn(rng, numBasis*numFeatures, 1.0/math.Sqrt(float64(numBasis))),
			Bias:    make([]float32, numFeatures),
		})
	}

	return &Model{
		params:     p,
		training:   true,
		optimState: make([]float32, p.NumTrainableWeights()),
	}, nil
}

// Call runs the forward pass on a frame, writing energies into it.
func (m *Model) Call(fr data.Frame) error {
	return Forward(m.params, fr)
}

// Params exposes the weight set. Only meaningful for the eager form.
func (m *Model) Params() *Params { return m.params }

// NumWeights returns the total parameter count, buffers included.
func (m *Model) NumWeights() int { return m.params.NumWeights() }

// NumTrainableWeights returns the learnable parameter count.
func (m *Model) NumTrainableWeights() int { return m.params.NumTrainableWeights() }

// Eval switches the model into inference mode.
func (m *Model) Eval() { m.training = false }

// Training reports whether the model is in training mode.
func (m *Model) Training() bool { return m.training }

// OptimState returns the training-only optimizer buffers, if still present.
func (m *Model) OptimState() []float32 { return m.optimState }

// To moves the model onto a device. CPU execution regardless; the tag keeps
// the driver honest about where the run is meant to live.
func (m *Model) To(dev device.Device) *Model {
	m.dev = dev
	return m
}

// Device returns the device the model was moved to.
func (m *Model) Device() device.Device { return m.dev }

func randn(rng *rand.Rand, n int, scale float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(rng.NormFloat64() * scale)
	}
	return out
}

func ones(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
