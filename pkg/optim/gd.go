// Package optim holds the first-order optimizer used to fit the
// propensity model.
package optim

// GradientDescent performs in-place weight updates with an optional L2
// penalty folded into the step.
type GradientDescent struct {
	LearningRate float64
	WeightDecay  float64 // L2 penalty coefficient, 0 disables regularization
}

func NewGradientDescent(lr, weightDecay float64) *GradientDescent {
	return &GradientDescent{LearningRate: lr, WeightDecay: weightDecay}
}

// Step applies one update to weights given the loss gradients. The decay
// term shrinks each weight toward zero before the gradient step.
func (o *GradientDescent) Step(weights, grads []float64) {
	for i := range weights {
		weights[i] -= o.LearningRate * (grads[i] + o.WeightDecay*weights[i])
	}
}
