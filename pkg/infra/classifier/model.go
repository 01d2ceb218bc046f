package classifier

import (
	"context"
	"image"
)

// Prediction is one label/probability pair from the classification model.
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Model runs inference over a decoded image and returns predictions ranked
// by descending probability. The concrete model runtime is injected; this
// package owns lifecycle and decision policy, not inference internals.
type Model interface {
	Predict(ctx context.Context, img image.Image) ([]Prediction, error)
}

// ModelLoader fetches and prepares a Model. Loading is expected to be slow
// (network fetch of weights); Engine.Initialize guarantees it runs at most
// once concurrently.
type ModelLoader interface {
	Load(ctx context.Context) (Model, error)
}

type ModelFunc func(ctx context.Context, img image.Image) ([]Prediction, error)

func (f ModelFunc) Predict(ctx context.Context, img image.Image) ([]Prediction, error) {
	return f(ctx, img)
}

type LoaderFunc func(ctx context.Context) (Model, error)

func (f LoaderFunc) Load(ctx context.Context) (Model, error) {
	return f(ctx)
}
