package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

const (
	cellTrendDeadband  = 0.01
	scoreTrendDeadband = 0.1

	actionPlanGapLimit    = 20
	actionPhaseSize       = 5
	achievableImprovement = 0.7
	topQuestionsPerGap    = 3
)

// CompareHeatmaps compares a session against a baseline. A negative delta
// means residual risk went down.
func (s *HeatmapService) CompareHeatmaps(ctx context.Context, sessionID, baselineSessionID string) (*model.HeatmapComparison, error) {
	current, err := s.GenerateHeatmap(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	baseline, err := s.GenerateHeatmap(ctx, baselineSessionID)
	if err != nil {
		return nil, err
	}

	type cellKey struct {
		dimension string
		bucket    model.SeverityBucket
	}
	keyOf := func(c model.HeatmapCell) cellKey {
		return cellKey{strings.ToLower(c.DimensionKey), c.SeverityBucket}
	}

	baselineCells := make(map[cellKey]model.HeatmapCell, len(baseline.Cells))
	for _, c := range baseline.Cells {
		baselineCells[keyOf(c)] = c
	}

	comparison := &model.HeatmapComparison{
		SessionID:         sessionID,
		BaselineSessionID: baselineSessionID,
		Cells:             make([]model.CellComparison, 0, len(current.Cells)),
		GeneratedAt:       s.now().UTC(),
	}

	add := func(dimensionKey string, bucket model.SeverityBucket, value, baselineValue float64) {
		delta := round4(value - baselineValue)
		trend := model.TrendFor(delta, cellTrendDeadband)
		switch trend {
		case model.TrendImproved:
			comparison.Summary.ImprovedCells++
		case model.TrendDegraded:
			comparison.Summary.DegradedCells++
		default:
			comparison.Summary.StableCells++
		}
		comparison.Cells = append(comparison.Cells, model.CellComparison{
			DimensionKey:   dimensionKey,
			SeverityBucket: bucket,
			Value:          value,
			BaselineValue:  baselineValue,
			Delta:          delta,
			Trend:          trend,
		})
	}

	seen := make(map[cellKey]bool, len(current.Cells))
	for _, c := range current.Cells {
		k := keyOf(c)
		seen[k] = true
		add(c.DimensionKey, c.SeverityBucket, c.CellValue, baselineCells[k].CellValue)
	}
	// cells only present in the baseline count as zero now
	for _, c := range baseline.Cells {
		if !seen[keyOf(c)] {
			add(c.DimensionKey, c.SeverityBucket, 0, c.CellValue)
		}
	}

	comparison.Summary.RiskScore = current.Summary.OverallRiskScore
	comparison.Summary.BaselineRiskScore = baseline.Summary.OverallRiskScore
	comparison.Summary.RiskScoreDelta = round2(current.Summary.OverallRiskScore - baseline.Summary.OverallRiskScore)
	comparison.Summary.OverallTrend = model.TrendFor(comparison.Summary.RiskScoreDelta, scoreTrendDeadband)
	return comparison, nil
}

// GetPriorityGaps ranks non-green cells by value × dimension weight × bucket
// multiplier. limit <= 0 returns every gap.
func (s *HeatmapService) GetPriorityGaps(ctx context.Context, sessionID string, limit int) ([]model.PriorityGap, error) {
	result, err := s.GenerateHeatmap(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	data, err := s.loadData(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return rankGaps(result, data, limit), nil
}

func rankGaps(result *model.HeatmapResult, data *heatmapData, limit int) []model.PriorityGap {
	gaps := []model.PriorityGap{}
	for _, c := range result.Cells {
		if c.ColorCode == model.ColorGreen {
			continue
		}

		var weight float64
		name := c.DimensionKey
		if dim := data.dimension(c.DimensionKey); dim != nil {
			weight = dim.Weight
			name = dim.DisplayName
		}

		questions := data.contributions(c.DimensionKey, c.SeverityBucket)
		sort.SliceStable(questions, func(i, j int) bool {
			return questions[i].ResidualContribution > questions[j].ResidualContribution
		})
		if len(questions) > topQuestionsPerGap {
			questions = questions[:topQuestionsPerGap]
		}

		gaps = append(gaps, model.PriorityGap{
			DimensionKey:   c.DimensionKey,
			DimensionName:  name,
			SeverityBucket: c.SeverityBucket,
			CellValue:      c.CellValue,
			ColorCode:      c.ColorCode,
			Weight:         weight,
			PriorityScore:  round4(c.CellValue * weight * c.SeverityBucket.Multiplier()),
			TopQuestions:   questions,
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].PriorityScore > gaps[j].PriorityScore
	})
	if limit > 0 && len(gaps) > limit {
		gaps = gaps[:limit]
	}
	return gaps
}

// GenerateActionPlan splits the top priority gaps into three phases. The
// projected score adds the estimated impact of every phase to the current
// overall risk score, capped at 100.
func (s *HeatmapService) GenerateActionPlan(ctx context.Context, sessionID string) (*model.ActionPlan, error) {
	result, err := s.GenerateHeatmap(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	data, err := s.loadData(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	gaps := rankGaps(result, data, actionPlanGapLimit)

	var immediate, rest []model.PriorityGap
	for _, g := range gaps {
		urgent := g.ColorCode == model.ColorRed &&
			(g.SeverityBucket == model.BucketCritical || g.SeverityBucket == model.BucketHigh)
		if urgent && len(immediate) < actionPhaseSize {
			immediate = append(immediate, g)
			continue
		}
		rest = append(rest, g)
	}

	var quickWins, continuous []model.PriorityGap
	for _, g := range rest {
		switch {
		case g.ColorCode != model.ColorGreen && len(quickWins) < actionPhaseSize:
			quickWins = append(quickWins, g)
		case len(continuous) < actionPhaseSize:
			continuous = append(continuous, g)
		}
	}

	plan := &model.ActionPlan{
		SessionID:    sessionID,
		CurrentScore: result.Summary.OverallRiskScore,
		GeneratedAt:  s.now().UTC(),
	}
	for i, phase := range []struct {
		name string
		gaps []model.PriorityGap
	}{
		{model.PhaseImmediate, immediate},
		{model.PhaseQuickWins, quickWins},
		{model.PhaseContinuous, continuous},
	} {
		p := model.ActionPhase{
			Name:            phase.name,
			Order:           i + 1,
			Gaps:            phase.gaps,
			EstimatedImpact: estimatedImpact(phase.gaps),
		}
		if p.Gaps == nil {
			p.Gaps = []model.PriorityGap{}
		}
		plan.Phases = append(plan.Phases, p)
		plan.TotalEstimatedImpact += p.EstimatedImpact
	}

	plan.TotalEstimatedImpact = round2(plan.TotalEstimatedImpact)
	plan.ProjectedScore = math.Min(100, round2(plan.CurrentScore+plan.TotalEstimatedImpact))
	return plan, nil
}

func estimatedImpact(gaps []model.PriorityGap) float64 {
	var sum float64
	for _, g := range gaps {
		sum += g.CellValue * achievableImprovement
	}
	return round2(sum)
}
