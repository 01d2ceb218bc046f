package imagemod

import "github.com/rutaviva/contentgate/pkg/domain/moderation"

// analyzeRequest is the wire body of POST {base}/analyze.
type analyzeRequest struct {
	ImagePath string `json:"image_path"`
}

// analysisResponse mirrors the scoring service's AnalisisImagenResultado
// payload.
type analysisResponse struct {
	EsApto            bool                   `json:"es_apto"`
	AnalisisViolencia map[string]interface{} `json:"analisis_violencia"`
	AnalisisArmas     map[string]interface{} `json:"analisis_armas"`
	PuntuacionRiesgo  float64                `json:"puntuacion_riesgo"`
}

// healthResponse is the wire shape of GET {base}/health.
type healthResponse struct {
	ModelosListos bool   `json:"modelos_listos"`
	Status        string `json:"status"`
}

// Result is the remote engine's verdict plus its transport bookkeeping.
//
// RiskScore carries the service's puntuacion_riesgo verbatim, which is a
// danger scale (higher = riskier) — the inverse of the local engine's
// safety score. Callers normalize on IsApproved and RejectionReason only.
type Result struct {
	moderation.Verdict
	ViolenceAnalysis map[string]interface{} `json:"violence_analysis,omitempty"`
	WeaponsAnalysis  map[string]interface{} `json:"weapons_analysis,omitempty"`
	ElapsedSeconds   float64                `json:"elapsed_seconds"`
	Err              string                 `json:"error,omitempty"`
}
