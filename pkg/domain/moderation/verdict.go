package moderation

// CategoryScore is one entry of the raw classifier output. It is advisory
// only and never drives the gate decision by itself.
type CategoryScore struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Verdict is the canonical decision record produced by every moderation
// engine. Callers gate on IsApproved and RejectionReason; RiskScore is
// engine-scaled (the local classifier reports a safety score where higher is
// safer, the remote image service reports its own danger-oriented score) and
// is documented on each engine.
type Verdict struct {
	IsApproved        bool            `json:"is_approved"`
	RiskScore         float64         `json:"risk_score"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	CategoryBreakdown []CategoryScore `json:"category_breakdown,omitempty"`
}

// Rejected reports whether the verdict blocks the asset. A false IsApproved
// always carries a non-empty RejectionReason.
func (v Verdict) Rejected() bool {
	return !v.IsApproved
}
