package evolve

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/montplusa/tictactoe-evolve/pkg/ai/perceptron"
)

// Crossover builds a child whose every parameter is copied from p1 or p2
// with equal probability. The child owns fresh tensors.
func Crossover(p1, p2 *perceptron.Network, rng *rand.Rand) *perceptron.Network {
	child := perceptron.Zero()
	mixDense(child.WeightsInputHidden, p1.WeightsInputHidden, p2.WeightsInputHidden, rng)
	mixDense(child.WeightsHiddenOutput, p1.WeightsHiddenOutput, p2.WeightsHiddenOutput, rng)
	mixVec(child.BiasHidden, p1.BiasHidden, p2.BiasHidden, rng)
	mixVec(child.BiasOutput, p1.BiasOutput, p2.BiasOutput, rng)
	return child
}

func mixDense(dst, a, b *mat.Dense, rng *rand.Rand) {
	r, c := dst.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if rng.Float64() < 0.5 {
				dst.Set(i, j, a.At(i, j))
			} else {
				dst.Set(i, j, b.At(i, j))
			}
		}
	}
}

func mixVec(dst, a, b *mat.VecDense, rng *rand.Rand) {
	for i := 0; i < dst.Len(); i++ {
		if rng.Float64() < 0.5 {
			dst.SetVec(i, a.AtVec(i))
		} else {
			dst.SetVec(i, b.AtVec(i))
		}
	}
}

// Mutate adds U[-1, 1] to each parameter of n with probability rate.
func Mutate(n *perceptron.Network, rate float64, rng *rand.Rand) {
	mutateDense(n.WeightsInputHidden, rate, rng)
	mutateDense(n.WeightsHiddenOutput, rate, rng)
	mutateVec(n.BiasHidden, rate, rng)
	mutateVec(n.BiasOutput, rate, rng)
}

func mutateDense(d *mat.Dense, rate float64, rng *rand.Rand) {
	r, c := d.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if rng.Float64() < rate {
				d.Set(i, j, d.At(i, j)+perturbation(rng))
			}
		}
	}
}

func mutateVec(v *mat.VecDense, rate float64, rng *rand.Rand) {
	for i := 0; i < v.Len(); i++ {
		if rng.Float64() < rate {
			v.SetVec(i, v.AtVec(i)+perturbation(rng))
		}
	}
}

func perturbation(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}
