// Package protein holds the report model shared by the analysis stages and
// the HTTP layer. JSON keys match what the browser client expects.
package protein

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type RiskLevel string

const (
	RiskCritical RiskLevel = "Critical Risk"
	RiskHigh     RiskLevel = "High Risk"
	RiskElevated RiskLevel = "Elevated Risk"
	RiskMedium   RiskLevel = "Medium Risk"
	RiskLow      RiskLevel = "Low Risk"
)

type Specificity string

const (
	SpecificityHigh     Specificity = "High"
	SpecificityModerate Specificity = "Moderate"
)

// StructureProfile is the secondary-structure estimate for one sequence.
// RandomCoil is 100 - AlphaHelix - BetaSheet and may be negative.
type StructureProfile struct {
	AlphaHelix       float64  `json:"alphaHelix"`
	BetaSheet        float64  `json:"betaSheet"`
	RandomCoil       float64  `json:"randomCoil"`
	InstabilityIndex float64  `json:"instabilityIndex"`
	Gravy            float64  `json:"gravy"`
	Length           int      `json:"length"`
	DisorderScore    *float64 `json:"aiDisorderScore,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// Hotspot is a curated mutation or a scanned aggregation-prone window.
type Hotspot struct {
	Residue    string   `json:"residue" yaml:"residue"`
	Position   int      `json:"position" yaml:"position"`
	Severity   Severity `json:"severity" yaml:"severity"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Impact     string   `json:"impact" yaml:"impact"`
}

type RiskAssessment struct {
	Score int       `json:"score"`
	Level RiskLevel `json:"level"`
}

type GuideRNA struct {
	Sequence       string      `json:"sequence"`
	PAM            string      `json:"pam"`
	FullSequence   string      `json:"fullSequence"`
	TargetSite     string      `json:"targetSite"`
	TargetMutation string      `json:"targetMutation"`
	Efficiency     float64     `json:"efficiency"`
	OffTargets     int         `json:"offTargets"`
	GCContent      float64     `json:"gcContent"`
	Specificity    Specificity `json:"specificity"`
}

type GuideDesign struct {
	Gene               string     `json:"gene"`
	GuideRNAs          []GuideRNA `json:"guideRNAs"`
	DeliverySystem     string     `json:"deliverySystem"`
	SuccessProbability float64    `json:"successProbability"`
	TargetMutations    []string   `json:"targetMutations"`
}

// Report is the root aggregate returned for one analysis request.
type Report struct {
	ProteinID      string           `json:"proteinId"`
	ProteinName    string           `json:"proteinName"`
	MisfoldingRisk int              `json:"misfoldingRisk"`
	RiskLevel      RiskLevel        `json:"riskLevel"`
	Confidence     int              `json:"confidence"`
	Structure      StructureProfile `json:"structure"`
	Hotspots       []Hotspot        `json:"hotspots"`
	CRISPRDesign   *GuideDesign     `json:"crisprDesign"`
	AnalysisMethod string           `json:"analysisMethod"`
	Timestamp      string           `json:"timestamp"`
}
