package perceptron

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Fixed topology: 9 board cells in, 18 hidden units, 9 move scores out.
const (
	Inputs  = 9
	Hidden  = 18
	Outputs = 9

	initWeightRange = 2.0
)

// Network is a two-layer ReLU perceptron. The four tensors are owned by the
// Network; use Clone before handing one to code that may modify it.
type Network struct {
	WeightsInputHidden  *mat.Dense    // Inputs x Hidden
	WeightsHiddenOutput *mat.Dense    // Hidden x Outputs
	BiasHidden          *mat.VecDense // Hidden
	BiasOutput          *mat.VecDense // Outputs
}

// New returns a network with weights drawn from U[-2, 2] and zero biases.
func New(rng *rand.Rand) *Network {
	n := Zero()
	fill := func(d *mat.Dense) {
		r, c := d.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				d.Set(i, j, (rng.Float64()*2-1)*initWeightRange)
			}
		}
	}
	fill(n.WeightsInputHidden)
	fill(n.WeightsHiddenOutput)
	return n
}

// Zero returns a network with every parameter set to 0.
func Zero() *Network {
	return &Network{
		WeightsInputHidden:  mat.NewDense(Inputs, Hidden, nil),
		WeightsHiddenOutput: mat.NewDense(Hidden, Outputs, nil),
		BiasHidden:          mat.NewVecDense(Hidden, nil),
		BiasOutput:          mat.NewVecDense(Outputs, nil),
	}
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	return &Network{
		WeightsInputHidden:  mat.DenseCopyOf(n.WeightsInputHidden),
		WeightsHiddenOutput: mat.DenseCopyOf(n.WeightsHiddenOutput),
		BiasHidden:          mat.VecDenseCopyOf(n.BiasHidden),
		BiasOutput:          mat.VecDenseCopyOf(n.BiasOutput),
	}
}

// Forward computes relu(relu(x·W_ih + b_h)·W_ho + b_o).
func (n *Network) Forward(in [Inputs]float64) [Outputs]float64 {
	x := mat.NewVecDense(Inputs, in[:])

	var hidden mat.VecDense
	hidden.MulVec(n.WeightsInputHidden.T(), x)
	hidden.AddVec(&hidden, n.BiasHidden)
	relu(&hidden)

	var output mat.VecDense
	output.MulVec(n.WeightsHiddenOutput.T(), &hidden)
	output.AddVec(&output, n.BiasOutput)
	relu(&output)

	var out [Outputs]float64
	for i := range out {
		out[i] = output.AtVec(i)
	}
	return out
}

func relu(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < 0 {
			v.SetVec(i, 0)
		}
	}
}

// Equal reports whether every parameter of n and o is identical.
func (n *Network) Equal(o *Network) bool {
	return mat.Equal(n.WeightsInputHidden, o.WeightsInputHidden) &&
		mat.Equal(n.WeightsHiddenOutput, o.WeightsHiddenOutput) &&
		mat.Equal(n.BiasHidden, o.BiasHidden) &&
		mat.Equal(n.BiasOutput, o.BiasOutput)
}

// Validate checks the tensor shapes.
func (n *Network) Validate() error {
	if n.WeightsInputHidden == nil || n.WeightsHiddenOutput == nil || n.BiasHidden == nil || n.BiasOutput == nil {
		return fmt.Errorf("network has missing tensors")
	}
	if r, c := n.WeightsInputHidden.Dims(); r != Inputs || c != Hidden {
		return fmt.Errorf("weights_input_hidden is %dx%d, want %dx%d", r, c, Inputs, Hidden)
	}
	if r, c := n.WeightsHiddenOutput.Dims(); r != Hidden || c != Outputs {
		return fmt.Errorf("weights_hidden_output is %dx%d, want %dx%d", r, c, Hidden, Outputs)
	}
	if l := n.BiasHidden.Len(); l != Hidden {
		return fmt.Errorf("bias_hidden has %d entries, want %d", l, Hidden)
	}
	if l := n.BiasOutput.Len(); l != Outputs {
		return fmt.Errorf("bias_output has %d entries, want %d", l, Outputs)
	}
	return nil
}
