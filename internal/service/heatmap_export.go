package service

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

// ExportToCSV renders the heatmap as CSV: one row per dimension with the four
// bucket values, then a summary block
func (s *HeatmapService) ExportToCSV(ctx context.Context, sessionID string) (string, error) {
	result, err := s.GenerateHeatmap(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return renderCSV(result), nil
}

// ExportToMarkdown renders the heatmap as a Markdown report with G/A/R tags
func (s *HeatmapService) ExportToMarkdown(ctx context.Context, sessionID string) (string, error) {
	result, err := s.GenerateHeatmap(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return renderMarkdown(result), nil
}

// ExportToHTML renders the Markdown report as a standalone HTML page
func (s *HeatmapService) ExportToHTML(ctx context.Context, sessionID string) (string, error) {
	md, err := s.ExportToMarkdown(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return renderHTML(md)
}

func bucketHeader() []string {
	out := make([]string, len(model.SeverityBucketOrder))
	for i, b := range model.SeverityBucketOrder {
		out[i] = string(b)
	}
	return out
}

func renderCSV(result *model.HeatmapResult) string {
	lines := []string{"Dimension," + strings.Join(bucketHeader(), ",")}

	for _, key := range result.DimensionKeys() {
		values := []string{key}
		for _, bucket := range model.SeverityBucketOrder {
			if cell, ok := result.Cell(key, bucket); ok {
				values = append(values, fmt.Sprintf("%.4f", cell.CellValue))
			} else {
				values = append(values, "0.0000")
			}
		}
		lines = append(lines, strings.Join(values, ","))
	}

	sum := result.Summary
	lines = append(lines,
		"",
		"# Summary",
		fmt.Sprintf("Total Cells,%d", sum.TotalCells),
		fmt.Sprintf("Green (<=0.05),%d", sum.GreenCells),
		fmt.Sprintf("Amber (0.05-0.15),%d", sum.AmberCells),
		fmt.Sprintf("Red (>0.15),%d", sum.RedCells),
		fmt.Sprintf("Critical Gaps,%d", sum.CriticalGapCount),
		fmt.Sprintf("Overall Risk Score,%.2f", sum.OverallRiskScore),
	)
	return strings.Join(lines, "\n")
}

func renderMarkdown(result *model.HeatmapResult) string {
	buckets := bucketHeader()
	separator := make([]string, len(buckets)+1)
	for i := range separator {
		separator[i] = "---"
	}

	lines := []string{
		"# Gap Heatmap Report",
		"",
		fmt.Sprintf("**Session ID:** %s", result.SessionID),
		fmt.Sprintf("**Generated:** %s", result.GeneratedAt.UTC().Format("2006-01-02T15:04:05.000Z")),
		"",
		"| Dimension | " + strings.Join(buckets, " | ") + " |",
		"|" + strings.Join(separator, "|") + "|",
	}

	for _, key := range result.DimensionKeys() {
		row := []string{key}
		for _, bucket := range model.SeverityBucketOrder {
			if cell, ok := result.Cell(key, bucket); ok {
				row = append(row, fmt.Sprintf("%s %.2f", cell.ColorCode.Letter(), cell.CellValue))
			} else {
				row = append(row, "G 0.00")
			}
		}
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
	}

	sum := result.Summary
	lines = append(lines,
		"",
		"## Summary",
		"",
		"| Metric | Value |",
		"|--------|-------|",
		fmt.Sprintf("| Total Cells | %d |", sum.TotalCells),
		fmt.Sprintf("| Green (<=0.05) | %d |", sum.GreenCells),
		fmt.Sprintf("| Amber (0.05-0.15) | %d |", sum.AmberCells),
		fmt.Sprintf("| Red (>0.15) | %d |", sum.RedCells),
		fmt.Sprintf("| Critical Gaps | %d |", sum.CriticalGapCount),
		fmt.Sprintf("| Overall Risk Score | %.2f%% |", sum.OverallRiskScore),
		"",
		"## Legend",
		"",
		"- **Cell Value**: Sum(Severity × (1 - Coverage)) for questions in that bucket",
		"- **G Green**: Residual <= 0.05 (low risk)",
		"- **A Amber**: Residual 0.05 - 0.15 (moderate risk)",
		"- **R Red**: Residual > 0.15 (high risk)",
	)
	return strings.Join(lines, "\n")
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func renderHTML(md string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("render heatmap html: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + html.EscapeString("Gap Heatmap Report") + "</title>\n")
	page.WriteString("<style>table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:4px 8px}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}
