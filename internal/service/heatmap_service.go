package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/cache"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/logger"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/repository"
)

// HeatmapService builds the dimension x severity gap heatmap of a session.
//
// Each cell holds Σ severity × (1 − coverage) over the questions of that
// dimension whose severity falls in the bucket. Results are cached per
// session; the cache only affects latency, never the returned value.
type HeatmapService struct {
	sessions   repository.SessionRepo
	questions  repository.QuestionRepo
	responses  repository.ResponseRepo
	dimensions repository.DimensionRepo
	cache      cache.HeatmapCache
	log        logger.Logger
	now        func() time.Time
}

// NewHeatmapService creates a new heatmap service. heatmapCache may be nil.
func NewHeatmapService(
	sessions repository.SessionRepo,
	questions repository.QuestionRepo,
	responses repository.ResponseRepo,
	dimensions repository.DimensionRepo,
	heatmapCache cache.HeatmapCache,
	log logger.Logger,
) *HeatmapService {
	if log == nil {
		log = logger.Nop()
	}
	return &HeatmapService{
		sessions:   sessions,
		questions:  questions,
		responses:  responses,
		dimensions: dimensions,
		cache:      heatmapCache,
		log:        log,
		now:        time.Now,
	}
}

// heatmapData is everything a heatmap is computed from
type heatmapData struct {
	session    *model.Session
	dimensions []*model.Dimension
	questions  []*model.Question
	coverage   map[string]float64
}

func (d *heatmapData) dimension(key string) *model.Dimension {
	for _, dim := range d.dimensions {
		if strings.EqualFold(dim.Key, key) {
			return dim
		}
	}
	return nil
}

// contributions lists the questions behind one cell in question order
func (d *heatmapData) contributions(dimensionKey string, bucket model.SeverityBucket) []model.ContributingQuestion {
	out := []model.ContributingQuestion{}
	for _, q := range d.questions {
		if !q.InDimension(dimensionKey) {
			continue
		}
		severity := q.SeverityOrDefault()
		if model.BucketFor(severity) != bucket {
			continue
		}
		coverage := d.coverage[q.ID]
		out = append(out, model.ContributingQuestion{
			QuestionID:           q.ID,
			Text:                 q.Text,
			Severity:             severity,
			CurrentCoverage:      coverage,
			ResidualContribution: round4(severity * (1 - coverage)),
		})
	}
	return out
}

// GenerateHeatmap returns the session's heatmap, from cache when present
func (s *HeatmapService) GenerateHeatmap(ctx context.Context, sessionID string) (*model.HeatmapResult, error) {
	start := time.Now()

	if cached := s.cached(ctx, sessionID); cached != nil {
		s.log.Debugf("heatmap cache hit for session %s", sessionID)
		return cached, nil
	}

	data, err := s.loadData(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cells := buildCells(data)
	names := make([]string, len(data.dimensions))
	for i, dim := range data.dimensions {
		names[i] = dim.DisplayName
	}

	result := &model.HeatmapResult{
		SessionID:       sessionID,
		Cells:           cells,
		Dimensions:      names,
		SeverityBuckets: append([]model.SeverityBucket(nil), model.SeverityBucketOrder...),
		Summary:         summarize(cells),
		GeneratedAt:     s.now().UTC(),
	}

	s.store(ctx, result)
	s.log.Infof("heatmap generated for session %s in %s", sessionID, time.Since(start).Round(time.Millisecond))
	return result, nil
}

// GetSummary returns only the summary statistics of the session's heatmap
func (s *HeatmapService) GetSummary(ctx context.Context, sessionID string) (*model.HeatmapSummary, error) {
	result, err := s.GenerateHeatmap(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := result.Summary
	return &summary, nil
}

// GetCells returns the heatmap cells, optionally filtered by dimension key
// and severity bucket (both case-insensitive; empty means no filter)
func (s *HeatmapService) GetCells(ctx context.Context, sessionID, dimension, severity string) ([]model.HeatmapCell, error) {
	result, err := s.GenerateHeatmap(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cells := make([]model.HeatmapCell, 0, len(result.Cells))
	for _, c := range result.Cells {
		if dimension != "" && !strings.EqualFold(c.DimensionKey, dimension) {
			continue
		}
		if severity != "" && !strings.EqualFold(string(c.SeverityBucket), severity) {
			continue
		}
		cells = append(cells, c)
	}
	return cells, nil
}

// Drilldown lists the questions contributing to one cell
func (s *HeatmapService) Drilldown(ctx context.Context, sessionID, dimensionKey, severityBucket string) (*model.HeatmapDrilldown, error) {
	bucket, ok := model.ParseSeverityBucket(severityBucket)
	if !ok {
		return nil, fmt.Errorf("unknown severity bucket %q: %w", severityBucket, ErrBadRequest)
	}

	result, err := s.GenerateHeatmap(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cell, ok := result.Cell(dimensionKey, bucket)
	if !ok {
		return nil, fmt.Errorf("cell %s/%s: %w", dimensionKey, bucket, ErrNotFound)
	}

	data, err := s.loadData(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	questions := data.contributions(cell.DimensionKey, cell.SeverityBucket)
	var potential float64
	for _, q := range questions {
		potential += q.ResidualContribution
	}

	return &model.HeatmapDrilldown{
		Cell:                  cell,
		ContributingQuestions: questions,
		PotentialImprovement:  round4(potential),
	}, nil
}

// InvalidateCache drops the cached heatmap of a session. Failures are logged.
func (s *HeatmapService) InvalidateCache(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.log.Warnf("failed to invalidate heatmap cache for session %s: %v", sessionID, err)
		return
	}
	s.log.Debugf("heatmap cache invalidated for session %s", sessionID)
}

func (s *HeatmapService) cached(ctx context.Context, sessionID string) *model.HeatmapResult {
	if s.cache == nil {
		return nil
	}
	result, err := s.cache.Get(ctx, sessionID)
	if err != nil {
		s.log.Warnf("failed to get cached heatmap for session %s: %v", sessionID, err)
		return nil
	}
	return result
}

func (s *HeatmapService) store(ctx context.Context, result *model.HeatmapResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, result); err != nil {
		s.log.Warnf("failed to cache heatmap for session %s: %v", result.SessionID, err)
	}
}

// loadData checks the session exists, then reads the catalog, the questions
// and the responses concurrently
func (s *HeatmapService) loadData(ctx context.Context, sessionID string) (*heatmapData, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	data := &heatmapData{session: session}
	var responses []*model.Response

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dims, err := s.dimensions.GetActive(gctx)
		if err != nil {
			return fmt.Errorf("load dimensions: %w", err)
		}
		data.dimensions = dims
		return nil
	})
	g.Go(func() error {
		qs, err := s.questions.FindWithDimension(gctx, session.QuestionnaireID)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		data.questions = qs
		return nil
	})
	g.Go(func() error {
		rs, err := s.responses.GetBySessionID(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("load responses: %w", err)
		}
		responses = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data.coverage = make(map[string]float64, len(responses))
	for _, r := range responses {
		if r == nil {
			continue
		}
		data.coverage[r.QuestionID] = r.CoverageOrZero()
	}
	return data, nil
}

// buildCells produces the dense dimension x bucket matrix in catalog and
// bucket order
func buildCells(data *heatmapData) []model.HeatmapCell {
	cells := make([]model.HeatmapCell, 0, len(data.dimensions)*len(model.SeverityBucketOrder))

	for _, dim := range data.dimensions {
		sums := make(map[model.SeverityBucket]float64, len(model.SeverityBucketOrder))
		counts := make(map[model.SeverityBucket]int, len(model.SeverityBucketOrder))

		for _, q := range data.questions {
			if !q.InDimension(dim.Key) {
				continue
			}
			severity := q.SeverityOrDefault()
			bucket := model.BucketFor(severity)
			sums[bucket] += severity * (1 - data.coverage[q.ID])
			counts[bucket]++
		}

		for _, bucket := range model.SeverityBucketOrder {
			value := round4(sums[bucket])
			cells = append(cells, model.HeatmapCell{
				DimensionID:    dim.ID,
				DimensionKey:   dim.Key,
				SeverityBucket: bucket,
				CellValue:      value,
				ColorCode:      model.ColorFor(value),
				QuestionCount:  counts[bucket],
			})
		}
	}
	return cells
}

func summarize(cells []model.HeatmapCell) model.HeatmapSummary {
	summary := model.HeatmapSummary{TotalCells: len(cells)}
	var total float64
	for _, c := range cells {
		switch c.ColorCode {
		case model.ColorGreen:
			summary.GreenCells++
		case model.ColorAmber:
			summary.AmberCells++
		case model.ColorRed:
			summary.RedCells++
			if c.SeverityBucket == model.BucketCritical {
				summary.CriticalGapCount++
			}
		}
		total += c.CellValue
	}
	summary.OverallRiskScore = round2(total)
	return summary
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
