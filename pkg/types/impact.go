package types

// ImpactCategory names one of the four backend-classified severity buckets
type ImpactCategory string

const (
	ImpactBreaking ImpactCategory = "breaking"
	ImpactSecurity ImpactCategory = "security"
	ImpactData     ImpactCategory = "data"
	ImpactCosmetic ImpactCategory = "cosmetic"
)

// ImpactCategories lists the buckets in display order
var ImpactCategories = []ImpactCategory{ImpactBreaking, ImpactSecurity, ImpactData, ImpactCosmetic}

// ImpactItem is one classified change
type ImpactItem struct {
	Change      Change   `json:"change" yaml:"change"`
	Impact      string   `json:"impact" yaml:"impact"`
	Severity    string   `json:"severity" yaml:"severity"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// ImpactSummary carries per-category counts and the aggregate risk score
type ImpactSummary struct {
	TotalChanges   int     `json:"total_changes" yaml:"total_changes"`
	BreakingCount  int     `json:"breaking_changes_count" yaml:"breaking_changes_count"`
	SecurityCount  int     `json:"security_changes_count" yaml:"security_changes_count"`
	DataCount      int     `json:"data_changes_count" yaml:"data_changes_count"`
	CosmeticCount  int     `json:"cosmetic_changes_count" yaml:"cosmetic_changes_count"`
	RiskScore      float64 `json:"risk_score" yaml:"risk_score"`
	Recommendation string  `json:"recommendation" yaml:"recommendation"`
}

// ImpactAnalysisResponse groups changes into severity buckets
type ImpactAnalysisResponse struct {
	BreakingChanges []ImpactItem  `json:"breaking_changes" yaml:"breaking_changes"`
	SecurityChanges []ImpactItem  `json:"security_changes" yaml:"security_changes"`
	DataChanges     []ImpactItem  `json:"data_changes" yaml:"data_changes"`
	CosmeticChanges []ImpactItem  `json:"cosmetic_changes" yaml:"cosmetic_changes"`
	Summary         ImpactSummary `json:"summary" yaml:"summary"`
}

// Items returns the bucket for a category
func (r *ImpactAnalysisResponse) Items(category ImpactCategory) []ImpactItem {
	switch category {
	case ImpactBreaking:
		return r.BreakingChanges
	case ImpactSecurity:
		return r.SecurityChanges
	case ImpactData:
		return r.DataChanges
	case ImpactCosmetic:
		return r.CosmeticChanges
	}
	return nil
}

// Count returns the summary count for a category, falling back to the
// bucket length when the summary omits it
func (r *ImpactAnalysisResponse) Count(category ImpactCategory) int {
	var n int
	switch category {
	case ImpactBreaking:
		n = r.Summary.BreakingCount
	case ImpactSecurity:
		n = r.Summary.SecurityCount
	case ImpactData:
		n = r.Summary.DataCount
	case ImpactCosmetic:
		n = r.Summary.CosmeticCount
	}
	if n == 0 {
		n = len(r.Items(category))
	}
	return n
}
