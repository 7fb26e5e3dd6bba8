// Package impact holds the view model of a backend impact analysis. It never
// reclassifies changes; it only tracks which buckets and items are expanded
// and labels the risk score.
package impact

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yairfalse/apidrift/pkg/types"
)

// Tier is the display label of a risk score
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Thresholds are the risk score boundaries between tiers
type Thresholds struct {
	Medium float64
	High   float64
}

// DefaultThresholds matches the config defaults
func DefaultThresholds() Thresholds {
	return Thresholds{Medium: 40, High: 70}
}

// RiskTier maps a 0-100 score onto a tier
func RiskTier(score float64, t Thresholds) Tier {
	switch {
	case score >= t.High:
		return TierHigh
	case score >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// Item is one classified change as displayed
type Item struct {
	Key      string           `json:"key" yaml:"key"`
	Item     types.ImpactItem `json:"item" yaml:"item"`
	Expanded bool             `json:"expanded" yaml:"expanded"`
}

// Metadata returns the secondary facts shown for an expanded item
func (i *Item) Metadata() map[string]string {
	c := &i.Item.Change
	meta := map[string]string{
		"resource_type": string(c.ResourceType),
		"change_type":   string(c.ChangeType),
		"path":          c.DisplayPath(),
	}
	if c.EndpointName != "" {
		meta["endpoint"] = c.EndpointName
	}
	if c.DetectedAt != "" {
		meta["detected_at"] = c.DetectedAt
	}
	return meta
}

// Bucket is one severity category
type Bucket struct {
	Category types.ImpactCategory `json:"category" yaml:"category"`
	Count    int                  `json:"count" yaml:"count"`
	Expanded bool                 `json:"expanded" yaml:"expanded"`
	Items    []Item               `json:"items" yaml:"items"`
}

// Label returns the bucket heading, e.g. "Breaking Changes"
func (b *Bucket) Label() string {
	s := string(b.Category)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:] + " Changes"
}

// Snapshot is a consistent copy of the view
type Snapshot struct {
	Buckets        []Bucket `json:"buckets" yaml:"buckets"`
	Total          int      `json:"total_changes" yaml:"total_changes"`
	RiskScore      float64  `json:"risk_score" yaml:"risk_score"`
	Tier           Tier     `json:"risk_tier" yaml:"risk_tier"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
}

// View tracks expansion state over an analysis
type View struct {
	thresholds Thresholds

	mu       sync.Mutex
	resp     *types.ImpactAnalysisResponse
	buckets  map[types.ImpactCategory]bool
	expanded map[string]bool
}

// NewView creates a view with nothing expanded
func NewView(resp *types.ImpactAnalysisResponse, t Thresholds) *View {
	if resp == nil {
		resp = &types.ImpactAnalysisResponse{}
	}
	return &View{
		thresholds: t,
		resp:       resp,
		buckets:    make(map[types.ImpactCategory]bool),
		expanded:   make(map[string]bool),
	}
}

// Tier returns the label of the analysis risk score
func (v *View) Tier() Tier {
	return RiskTier(v.resp.Summary.RiskScore, v.thresholds)
}

// ToggleBucket flips a bucket between expanded and collapsed
func (v *View) ToggleBucket(c types.ImpactCategory) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.buckets[c] = !v.buckets[c]
}

// ExpandAll opens every bucket and item
func (v *View) ExpandAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range types.ImpactCategories {
		v.buckets[c] = true
		items := v.resp.Items(c)
		for i := range items {
			v.expanded[ItemKey(c, i, &items[i])] = true
		}
	}
}

// ToggleItem flips one item. It reports false for an unknown key.
func (v *View) ToggleItem(key string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range types.ImpactCategories {
		items := v.resp.Items(c)
		for i := range items {
			if ItemKey(c, i, &items[i]) == key {
				v.expanded[key] = !v.expanded[key]
				return true
			}
		}
	}
	return false
}

// Snapshot returns the buckets in display order
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Snapshot{
		Total:          v.resp.Summary.TotalChanges,
		RiskScore:      v.resp.Summary.RiskScore,
		Tier:           RiskTier(v.resp.Summary.RiskScore, v.thresholds),
		Recommendation: v.resp.Summary.Recommendation,
	}
	for _, c := range types.ImpactCategories {
		items := v.resp.Items(c)
		b := Bucket{
			Category: c,
			Count:    v.resp.Count(c),
			Expanded: v.buckets[c],
			Items:    make([]Item, 0, len(items)),
		}
		for i := range items {
			key := ItemKey(c, i, &items[i])
			b.Items = append(b.Items, Item{Key: key, Item: items[i], Expanded: v.expanded[key]})
		}
		s.Buckets = append(s.Buckets, b)
	}
	if s.Total == 0 {
		for _, b := range s.Buckets {
			s.Total += b.Count
		}
	}
	return s
}

// ItemKey identifies an item within its bucket, by change id when there is
// one and by position otherwise
func ItemKey(c types.ImpactCategory, index int, item *types.ImpactItem) string {
	if item.Change.ID != "" {
		return string(c) + "/" + item.Change.ID
	}
	return fmt.Sprintf("%s/#%d", c, index)
}
