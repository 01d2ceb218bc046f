package classifier

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/rutaviva/contentgate/pkg/domain/moderation"
)

const (
	// DefaultRejectionThreshold is the top-label probability above which a
	// flagged category rejects the image.
	DefaultRejectionThreshold = 0.6
	// DefaultApprovalThreshold is the minimum safety score for approval.
	DefaultApprovalThreshold = 0.8
)

// defaultRejectionMessages is the fixed rejection label set with its
// per-category reason templates.
var defaultRejectionMessages = map[string]string{
	"Porn":   "image appears to contain pornographic content",
	"Hentai": "image appears to contain explicit cartoon content",
	"Sexy":   "image appears to contain sexually suggestive content",
}

// Policy maps ranked classifier output onto a verdict.
type Policy struct {
	RejectionThreshold float64
	ApprovalThreshold  float64
	RejectionMessages  map[string]string
}

func DefaultPolicy() Policy {
	messages := make(map[string]string, len(defaultRejectionMessages))
	for label, msg := range defaultRejectionMessages {
		messages[label] = msg
	}
	return Policy{
		RejectionThreshold: DefaultRejectionThreshold,
		ApprovalThreshold:  DefaultApprovalThreshold,
		RejectionMessages:  messages,
	}
}

type policySettings struct {
	RejectionThreshold float64           `mapstructure:"rejection_threshold"`
	ApprovalThreshold  float64           `mapstructure:"approval_threshold"`
	RejectionMessages  map[string]string `mapstructure:"rejection_messages"`
}

// PolicyFromSettings overlays a loose settings bag over the default policy.
func PolicyFromSettings(settings map[string]interface{}) (Policy, error) {
	policy := DefaultPolicy()
	if len(settings) == 0 {
		return policy, nil
	}

	var s policySettings
	if err := mapstructure.Decode(settings, &s); err != nil {
		return Policy{}, fmt.Errorf("failed to decode policy settings: %w", err)
	}

	if s.RejectionThreshold != 0 {
		if s.RejectionThreshold < 0 || s.RejectionThreshold > 1 {
			return Policy{}, fmt.Errorf("rejection threshold must be between 0 and 1")
		}
		policy.RejectionThreshold = s.RejectionThreshold
	}
	if s.ApprovalThreshold != 0 {
		if s.ApprovalThreshold < 0 || s.ApprovalThreshold > 1 {
			return Policy{}, fmt.Errorf("approval threshold must be between 0 and 1")
		}
		policy.ApprovalThreshold = s.ApprovalThreshold
	}
	if len(s.RejectionMessages) > 0 {
		policy.RejectionMessages = s.RejectionMessages
	}

	return policy, nil
}

// Evaluate turns a ranked prediction list into a verdict. RiskScore is a
// safety score here: 1.0 for clean content, 1-p when the top label is in
// the rejection set above the rejection threshold. A set rejection reason
// short-circuits approval even when the numeric threshold would pass; the
// conservative check is intentional and must stay. An empty prediction list
// yields the analysis-failed verdict, never a panic.
func (p Policy) Evaluate(preds []Prediction) moderation.Verdict {
	if len(preds) == 0 {
		return degradedAnalysisVerdict()
	}

	ranked := make([]Prediction, len(preds))
	copy(ranked, preds)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})

	breakdown := make([]moderation.CategoryScore, 0, len(ranked))
	for _, pred := range ranked {
		breakdown = append(breakdown, moderation.CategoryScore{
			Label:       pred.Label,
			Probability: pred.Probability,
		})
	}

	top := ranked[0]
	score := 1.0
	reason := ""
	if msg, flagged := p.RejectionMessages[top.Label]; flagged && top.Probability > p.RejectionThreshold {
		score = 1 - top.Probability
		reason = msg
	}

	return moderation.Verdict{
		IsApproved:        score >= p.ApprovalThreshold && reason == "",
		RiskScore:         score,
		RejectionReason:   reason,
		CategoryBreakdown: breakdown,
	}
}
