package classifier

import (
	"context"
	"errors"

	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	loadKey = "model"

	// degradedAnalysisScore is the safety score of the analysis-failed
	// verdict produced when decode or inference breaks.
	degradedAnalysisScore = 0.3
)

// Engine is the in-process image classification engine: it owns the lazy
// model load and maps inference output through the decision policy.
type Engine struct {
	handle *Handle
	loader ModelLoader
	policy Policy
	logger *logrus.Logger
	group  singleflight.Group
}

func NewEngine(logger *logrus.Logger, loader ModelLoader, policy Policy) *Engine {
	return &Engine{
		handle: NewHandle(),
		loader: loader,
		policy: policy,
		logger: logger,
	}
}

// Handle exposes the lifecycle record for collaborators that need to read
// load state. Only this engine mutates it.
func (e *Engine) Handle() *Handle {
	return e.handle
}

// Initialize loads the model at most once per session. Re-entrant calls
// return immediately once loaded; concurrent calls join the in-flight load
// and observe the same outcome. Failure is recorded on the handle and
// returned; it is re-checked, not re-thrown, by later Classify calls.
func (e *Engine) Initialize(ctx context.Context) error {
	if st := e.handle.State(); st.Loaded {
		return nil
	}

	_, err, _ := e.group.Do(loadKey, func() (interface{}, error) {
		if st := e.handle.State(); st.Loaded {
			return nil, nil
		}
		if e.loader == nil {
			err := errors.New("no model loader configured")
			e.handle.failLoad(err)
			return nil, err
		}

		e.handle.beginLoad()
		model, err := e.loader.Load(ctx)
		if err != nil {
			e.logger.WithError(err).Error("classifier model load failed")
			e.handle.failLoad(err)
			return nil, err
		}

		e.handle.completeLoad(model)
		e.logger.Info("classifier model loaded")
		return nil, nil
	})
	return err
}

// Classify decodes the upload, runs inference and applies the policy.
// Decode and inference failures never propagate: they come back as the
// analysis-failed degraded verdict so one bad image cannot abort a batch.
// The only error return is moderation.ErrNotInitialized, which callers must
// avoid by checking the handle first; Classify never auto-initializes.
func (e *Engine) Classify(ctx context.Context, data []byte) (moderation.Verdict, error) {
	model, ok := e.handle.Model()
	if !ok {
		return moderation.Verdict{}, moderation.ErrNotInitialized
	}

	img, err := Decode(data)
	if err != nil {
		e.logger.WithError(err).Warn("image decode failed")
		return degradedAnalysisVerdict(), nil
	}

	preds, err := model.Predict(ctx, img)
	if err == nil && len(preds) == 0 {
		err = errors.New("model returned no predictions")
	}
	if err != nil {
		e.logger.WithError(moderation.NewInferenceError(err)).Warn("image inference failed")
		return degradedAnalysisVerdict(), nil
	}

	return e.policy.Evaluate(preds), nil
}

func degradedAnalysisVerdict() moderation.Verdict {
	return moderation.Verdict{
		IsApproved:      false,
		RiskScore:       degradedAnalysisScore,
		RejectionReason: "analysis failed",
	}
}
