package analysis

import (
	"context"

	"github.com/rutaviva/contentgate/pkg/domain/moderation"
	"github.com/rutaviva/contentgate/pkg/infra/classifier"
	"github.com/rutaviva/contentgate/pkg/infra/imagemod"
)

// Analyzer is the classifier seam the coordinator runs files through.
// Errors escaping this seam are degraded fail-open by the coordinator.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, file File) (moderation.Verdict, error)
}

// LocalAnalyzer adapts the in-process classifier engine.
type LocalAnalyzer struct {
	engine *classifier.Engine
}

func NewLocalAnalyzer(engine *classifier.Engine) *LocalAnalyzer {
	return &LocalAnalyzer{engine: engine}
}

func (a *LocalAnalyzer) AnalyzeImage(ctx context.Context, file File) (moderation.Verdict, error) {
	return a.engine.Classify(ctx, file.Data)
}

// RemoteAnalyzer adapts the remote image moderation client. The client
// never errors across its boundary; its degraded verdicts pass through
// unchanged.
type RemoteAnalyzer struct {
	client imagemod.Client
}

func NewRemoteAnalyzer(client imagemod.Client) *RemoteAnalyzer {
	return &RemoteAnalyzer{client: client}
}

func (a *RemoteAnalyzer) AnalyzeImage(ctx context.Context, file File) (moderation.Verdict, error) {
	result := a.client.Analyze(ctx, file.Path)
	return result.Verdict, nil
}

// AnalyzerFunc adapts a function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, file File) (moderation.Verdict, error)

func (f AnalyzerFunc) AnalyzeImage(ctx context.Context, file File) (moderation.Verdict, error) {
	return f(ctx, file)
}
