package model

import (
	"strings"
	"time"
)

// SeverityBucket is one of four fixed bands partitioning severity [0,1]
type SeverityBucket string

const (
	BucketLow      SeverityBucket = "Low"      // [0, 0.25)
	BucketMedium   SeverityBucket = "Medium"   // [0.25, 0.5)
	BucketHigh     SeverityBucket = "High"     // [0.5, 0.75)
	BucketCritical SeverityBucket = "Critical" // [0.75, 1]
)

// SeverityBucketOrder is the fixed column order used by every heatmap view
var SeverityBucketOrder = []SeverityBucket{BucketLow, BucketMedium, BucketHigh, BucketCritical}

// BucketFor classifies a severity value
func BucketFor(severity float64) SeverityBucket {
	switch {
	case severity < 0.25:
		return BucketLow
	case severity < 0.5:
		return BucketMedium
	case severity < 0.75:
		return BucketHigh
	default:
		return BucketCritical
	}
}

// ParseSeverityBucket matches a bucket name case-insensitively
func ParseSeverityBucket(s string) (SeverityBucket, bool) {
	for _, b := range SeverityBucketOrder {
		if strings.EqualFold(string(b), s) {
			return b, true
		}
	}
	return "", false
}

// Multiplier is the priority weighting applied to gaps in the bucket
func (b SeverityBucket) Multiplier() float64 {
	switch b {
	case BucketCritical:
		return 2.0
	case BucketHigh:
		return 1.5
	case BucketMedium:
		return 1.0
	case BucketLow:
		return 0.5
	}
	return 0
}

// HeatmapColor is the band a cell value falls into
type HeatmapColor string

const (
	ColorGreen HeatmapColor = "#28A745" // <= 0.05
	ColorAmber HeatmapColor = "#FFC107" // (0.05, 0.15]
	ColorRed   HeatmapColor = "#DC3545" // > 0.15
)

// ColorFor classifies a residual risk value
func ColorFor(value float64) HeatmapColor {
	switch {
	case value <= 0.05:
		return ColorGreen
	case value <= 0.15:
		return ColorAmber
	default:
		return ColorRed
	}
}

// Letter is the one-letter tag used in text reports
func (c HeatmapColor) Letter() string {
	switch c {
	case ColorGreen:
		return "G"
	case ColorAmber:
		return "A"
	default:
		return "R"
	}
}

// HeatmapCell is the residual risk of one (dimension, severity bucket) pair
type HeatmapCell struct {
	DimensionID    string         `json:"dimensionId"`
	DimensionKey   string         `json:"dimensionKey"`
	SeverityBucket SeverityBucket `json:"severityBucket"`
	CellValue      float64        `json:"cellValue"`
	ColorCode      HeatmapColor   `json:"colorCode"`
	QuestionCount  int            `json:"questionCount"`
}

type HeatmapSummary struct {
	TotalCells       int     `json:"totalCells"`
	GreenCells       int     `json:"greenCells"`
	AmberCells       int     `json:"amberCells"`
	RedCells         int     `json:"redCells"`
	CriticalGapCount int     `json:"criticalGapCount"`
	OverallRiskScore float64 `json:"overallRiskScore"`
}

// HeatmapResult is a complete generated heatmap. Dimensions holds display
// names in catalog order.
type HeatmapResult struct {
	SessionID       string           `json:"sessionId"`
	Cells           []HeatmapCell    `json:"cells"`
	Dimensions      []string         `json:"dimensions"`
	SeverityBuckets []SeverityBucket `json:"severityBuckets"`
	Summary         HeatmapSummary   `json:"summary"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// Cell finds the cell for a dimension key and bucket, matching case-insensitively
func (r *HeatmapResult) Cell(dimensionKey string, bucket SeverityBucket) (HeatmapCell, bool) {
	for _, c := range r.Cells {
		if strings.EqualFold(c.DimensionKey, dimensionKey) && strings.EqualFold(string(c.SeverityBucket), string(bucket)) {
			return c, true
		}
	}
	return HeatmapCell{}, false
}

// DimensionKeys returns the distinct dimension keys in cell order
func (r *HeatmapResult) DimensionKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, c := range r.Cells {
		if !seen[c.DimensionKey] {
			seen[c.DimensionKey] = true
			keys = append(keys, c.DimensionKey)
		}
	}
	return keys
}

// ContributingQuestion is one question's share of a cell value
type ContributingQuestion struct {
	QuestionID           string  `json:"questionId"`
	Text                 string  `json:"text"`
	Severity             float64 `json:"severity"`
	CurrentCoverage      float64 `json:"currentCoverage"`
	ResidualContribution float64 `json:"residualContribution"`
}

type HeatmapDrilldown struct {
	Cell                  HeatmapCell            `json:"cell"`
	ContributingQuestions []ContributingQuestion `json:"contributingQuestions"`
	PotentialImprovement  float64                `json:"potentialImprovement"`
}

// Trend classifies a change in residual risk between two heatmaps
type Trend string

const (
	TrendStable   Trend = "STABLE"
	TrendImproved Trend = "IMPROVED"
	TrendDegraded Trend = "DEGRADED"
)

// TrendFor classifies delta; lower residual risk is an improvement
func TrendFor(delta, deadband float64) Trend {
	switch {
	case delta > -deadband && delta < deadband:
		return TrendStable
	case delta < 0:
		return TrendImproved
	default:
		return TrendDegraded
	}
}

type CellComparison struct {
	DimensionKey   string         `json:"dimensionKey"`
	SeverityBucket SeverityBucket `json:"severityBucket"`
	Value          float64        `json:"value"`
	BaselineValue  float64        `json:"baselineValue"`
	Delta          float64        `json:"delta"`
	Trend          Trend          `json:"trend"`
}

type ComparisonSummary struct {
	ImprovedCells     int     `json:"improvedCells"`
	DegradedCells     int     `json:"degradedCells"`
	StableCells       int     `json:"stableCells"`
	RiskScore         float64 `json:"riskScore"`
	BaselineRiskScore float64 `json:"baselineRiskScore"`
	RiskScoreDelta    float64 `json:"riskScoreDelta"`
	OverallTrend      Trend   `json:"overallTrend"`
}

// HeatmapComparison compares a session against a baseline session
type HeatmapComparison struct {
	SessionID         string            `json:"sessionId"`
	BaselineSessionID string            `json:"baselineSessionId"`
	Cells             []CellComparison  `json:"cells"`
	Summary           ComparisonSummary `json:"summary"`
	GeneratedAt       time.Time         `json:"generatedAt"`
}

// PriorityGap is a non-green cell ranked by weighted residual risk
type PriorityGap struct {
	DimensionKey   string                 `json:"dimensionKey"`
	DimensionName  string                 `json:"dimensionName"`
	SeverityBucket SeverityBucket         `json:"severityBucket"`
	CellValue      float64                `json:"cellValue"`
	ColorCode      HeatmapColor           `json:"colorCode"`
	Weight         float64                `json:"weight"`
	PriorityScore  float64                `json:"priorityScore"`
	TopQuestions   []ContributingQuestion `json:"topQuestions"`
}

// Action plan phase names
const (
	PhaseImmediate  = "Immediate Priority"
	PhaseQuickWins  = "Quick Wins"
	PhaseContinuous = "Continuous Improvement"
)

type ActionPhase struct {
	Name            string        `json:"name"`
	Order           int           `json:"order"`
	Gaps            []PriorityGap `json:"gaps"`
	EstimatedImpact float64       `json:"estimatedImpact"`
}

type ActionPlan struct {
	SessionID            string        `json:"sessionId"`
	Phases               []ActionPhase `json:"phases"`
	CurrentScore         float64       `json:"currentScore"`
	TotalEstimatedImpact float64       `json:"totalEstimatedImpact"`
	ProjectedScore       float64       `json:"projectedScore"`
	GeneratedAt          time.Time     `json:"generatedAt"`
}
