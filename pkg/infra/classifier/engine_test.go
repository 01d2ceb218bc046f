package classifier_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"github.com/rutaviva/contentgate/pkg/infra/classifier"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func staticModel(preds []classifier.Prediction, err error) classifier.Model {
	return classifier.ModelFunc(func(ctx context.Context, img image.Image) ([]classifier.Prediction, error) {
		return preds, err
	})
}

func staticLoader(model classifier.Model, err error) classifier.ModelLoader {
	return classifier.LoaderFunc(func(ctx context.Context) (classifier.Model, error) {
		return model, err
	})
}

func TestEngine_Initialize(t *testing.T) {
	logger := logrus.New()

	t.Run("loads the model once and marks the handle loaded", func(t *testing.T) {
		engine := classifier.NewEngine(logger, staticLoader(staticModel(nil, nil), nil), classifier.DefaultPolicy())

		err := engine.Initialize(context.Background())

		assert.NoError(t, err)
		state := engine.Handle().State()
		assert.True(t, state.Loaded)
		assert.False(t, state.Loading)
		assert.Empty(t, state.LoadError)
	})

	t.Run("concurrent callers share a single load", func(t *testing.T) {
		var loads int64
		loader := classifier.LoaderFunc(func(ctx context.Context) (classifier.Model, error) {
			atomic.AddInt64(&loads, 1)
			time.Sleep(50 * time.Millisecond)
			return staticModel(nil, nil), nil
		})
		engine := classifier.NewEngine(logger, loader, classifier.DefaultPolicy())

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, engine.Initialize(context.Background()))
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), atomic.LoadInt64(&loads))
		assert.True(t, engine.Handle().State().Loaded)
	})

	t.Run("load failure is recorded on the handle", func(t *testing.T) {
		loadErr := errors.New("weights unavailable")
		engine := classifier.NewEngine(logger, staticLoader(nil, loadErr), classifier.DefaultPolicy())

		err := engine.Initialize(context.Background())

		assert.Error(t, err)
		state := engine.Handle().State()
		assert.False(t, state.Loaded)
		assert.False(t, state.Loading)
		assert.Equal(t, "weights unavailable", state.LoadError)
	})

	t.Run("missing loader fails and records the error", func(t *testing.T) {
		engine := classifier.NewEngine(logger, nil, classifier.DefaultPolicy())

		err := engine.Initialize(context.Background())

		assert.Error(t, err)
		assert.Contains(t, engine.Handle().State().LoadError, "no model loader")
	})

	t.Run("second call after success is a no-op", func(t *testing.T) {
		var loads int64
		loader := classifier.LoaderFunc(func(ctx context.Context) (classifier.Model, error) {
			atomic.AddInt64(&loads, 1)
			return staticModel(nil, nil), nil
		})
		engine := classifier.NewEngine(logger, loader, classifier.DefaultPolicy())

		require.NoError(t, engine.Initialize(context.Background()))
		require.NoError(t, engine.Initialize(context.Background()))

		assert.Equal(t, int64(1), atomic.LoadInt64(&loads))
	})
}

func TestEngine_Classify(t *testing.T) {
	logger := logrus.New()

	t.Run("returns ErrNotInitialized before a successful load", func(t *testing.T) {
		engine := classifier.NewEngine(logger, nil, classifier.DefaultPolicy())

		_, err := engine.Classify(context.Background(), pngBytes(t))

		assert.ErrorIs(t, err, moderation.ErrNotInitialized)
	})

	t.Run("applies the policy to model predictions", func(t *testing.T) {
		model := staticModel([]classifier.Prediction{
			{Label: "Porn", Probability: 0.9},
			{Label: "Neutral", Probability: 0.1},
		}, nil)
		engine := classifier.NewEngine(logger, staticLoader(model, nil), classifier.DefaultPolicy())
		require.NoError(t, engine.Initialize(context.Background()))

		verdict, err := engine.Classify(context.Background(), pngBytes(t))

		assert.NoError(t, err)
		assert.False(t, verdict.IsApproved)
		assert.InDelta(t, 0.1, verdict.RiskScore, 1e-9)
	})

	t.Run("undecodable bytes degrade to the analysis-failed verdict", func(t *testing.T) {
		model := staticModel([]classifier.Prediction{{Label: "Neutral", Probability: 1}}, nil)
		engine := classifier.NewEngine(logger, staticLoader(model, nil), classifier.DefaultPolicy())
		require.NoError(t, engine.Initialize(context.Background()))

		verdict, err := engine.Classify(context.Background(), []byte("not an image"))

		assert.NoError(t, err)
		assert.False(t, verdict.IsApproved)
		assert.Equal(t, 0.3, verdict.RiskScore)
		assert.Equal(t, "analysis failed", verdict.RejectionReason)
	})

	t.Run("inference errors degrade to the analysis-failed verdict", func(t *testing.T) {
		model := staticModel(nil, errors.New("tensor shape mismatch"))
		engine := classifier.NewEngine(logger, staticLoader(model, nil), classifier.DefaultPolicy())
		require.NoError(t, engine.Initialize(context.Background()))

		verdict, err := engine.Classify(context.Background(), pngBytes(t))

		assert.NoError(t, err)
		assert.False(t, verdict.IsApproved)
		assert.Equal(t, 0.3, verdict.RiskScore)
		assert.Equal(t, "analysis failed", verdict.RejectionReason)
	})

	t.Run("empty prediction list degrades like an inference error", func(t *testing.T) {
		model := staticModel(nil, nil)
		engine := classifier.NewEngine(logger, staticLoader(model, nil), classifier.DefaultPolicy())
		require.NoError(t, engine.Initialize(context.Background()))

		verdict, err := engine.Classify(context.Background(), pngBytes(t))

		assert.NoError(t, err)
		assert.Equal(t, "analysis failed", verdict.RejectionReason)
	})
}
