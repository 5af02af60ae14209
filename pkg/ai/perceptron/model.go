package perceptron

import (
	"sync"

	"github.com/patrikeh/go-deep"
)

// Model is a go-deep network carrying the weights of a Network. It is what the
// serving side runs; go-deep keeps activations on its neurons, so Forward is
// serialised.
type Model struct {
	mu     sync.Mutex
	neural *deep.Neural
}

// Compile builds the go-deep equivalent of n.
func Compile(n *Network) *Model {
	neural := deep.NewNeural(&deep.Config{
		Inputs:     Inputs,
		Layout:     []int{Hidden, Outputs},
		Activation: deep.ActivationReLU,
		Mode:       deep.ModeDefault, // ReLU on the output layer too
		Weight:     deep.NewUniform(initWeightRange, 0.0),
		Bias:       true,
	})
	neural.ApplyWeights(deepWeights(n))
	return &Model{neural: neural}
}

// deepWeights lays the tensors out as go-deep expects:
// [layer][neuron][incoming weights..., bias].
func deepWeights(n *Network) [][][]float64 {
	hidden := make([][]float64, Hidden)
	for h := range hidden {
		in := make([]float64, Inputs+1)
		for i := 0; i < Inputs; i++ {
			in[i] = n.WeightsInputHidden.At(i, h)
		}
		in[Inputs] = n.BiasHidden.AtVec(h)
		hidden[h] = in
	}

	output := make([][]float64, Outputs)
	for o := range output {
		in := make([]float64, Hidden+1)
		for h := 0; h < Hidden; h++ {
			in[h] = n.WeightsHiddenOutput.At(h, o)
		}
		in[Hidden] = n.BiasOutput.AtVec(o)
		output[o] = in
	}

	return [][][]float64{hidden, output}
}

func (m *Model) Forward(in [Inputs]float64) [Outputs]float64 {
	m.mu.Lock()
	pred := m.neural.Predict(in[:])
	m.mu.Unlock()

	var out [Outputs]float64
	copy(out[:], pred)
	return out
}
