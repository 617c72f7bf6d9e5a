package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/app"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/config"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/logger"
	"github.com/Avi-Bendetsky/Quiz-to-build-sub004/internal/model"
)

var dimensions = []model.Dimension{
	{Key: "arch_sec", DisplayName: "Architecture & Security", Weight: 0.15},
	{Key: "devops_iac", DisplayName: "DevOps & Infrastructure as Code", Weight: 0.12},
	{Key: "quality_test", DisplayName: "Quality & Testing", Weight: 0.10},
	{Key: "finance", DisplayName: "Finance & Cost Management", Weight: 0.10},
	{Key: "strategy", DisplayName: "Strategy & Vision", Weight: 0.08},
	{Key: "requirements", DisplayName: "Requirements & Specifications", Weight: 0.08},
	{Key: "data_ai", DisplayName: "Data & AI", Weight: 0.08},
	{Key: "privacy_legal", DisplayName: "Privacy & Legal", Weight: 0.08},
	{Key: "service_ops", DisplayName: "Service Operations", Weight: 0.08},
	{Key: "compliance_policy", DisplayName: "Compliance & Policy", Weight: 0.07},
	{Key: "people_change", DisplayName: "People & Change Management", Weight: 0.06},
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	log := logger.New(os.Stdout, "info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	if err := seed(ctx, a, log); err != nil {
		log.Errorf("Seed failed: %v", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, a *app.App, log logger.Logger) error {
	for i, d := range dimensions {
		dim := d
		dim.ID = uuid.NewString()
		dim.OrderIndex = i + 1
		dim.IsActive = true
		if err := a.DimensionRepo.Upsert(ctx, &dim); err != nil {
			return err
		}
		log.Infof("  ✓ %s: %s (weight: %.2f)", dim.Key, dim.DisplayName, dim.Weight)
	}

	questionnaireID := uuid.NewString()
	securitySection := &model.Section{ID: uuid.NewString(), QuestionnaireID: questionnaireID, Title: "Security", OrderIndex: 1}
	deliverySection := &model.Section{ID: uuid.NewString(), QuestionnaireID: questionnaireID, Title: "Delivery", OrderIndex: 2}
	for _, s := range []*model.Section{securitySection, deliverySection} {
		if err := a.QuestionRepo.SaveSection(ctx, s); err != nil {
			return err
		}
	}

	hasThreatModel := &model.Question{
		ID:              uuid.NewString(),
		SectionID:       securitySection.ID,
		QuestionnaireID: questionnaireID,
		Text:            "Do you have a documented threat model for your application?",
		Type:            model.QuestionTypeSingleChoice,
		Options: []model.QuestionOption{
			{ID: "threat-yes", Label: "Yes, maintained", Value: "full"},
			{ID: "threat-partial", Label: "Initial model, not updated", Value: "partial"},
			{ID: "threat-no", Label: "No threat model exists", Value: "none"},
		},
		IsRequired:   true,
		OrderIndex:   1,
		DimensionKey: strPtr("arch_sec"),
		Severity:     floatPtr(0.85),
	}
	threatReview := &model.Question{
		ID:              uuid.NewString(),
		SectionID:       securitySection.ID,
		QuestionnaireID: questionnaireID,
		Text:            "When was the threat model last reviewed?",
		Type:            model.QuestionTypeDate,
		OrderIndex:      2,
		DimensionKey:    strPtr("arch_sec"),
		Severity:        floatPtr(0.6),
	}
	encryption := &model.Question{
		ID:              uuid.NewString(),
		SectionID:       securitySection.ID,
		QuestionnaireID: questionnaireID,
		Text:            "Is all data encrypted at rest and in transit?",
		Type:            model.QuestionTypeSingleChoice,
		IsRequired:      true,
		OrderIndex:      3,
		DimensionKey:    strPtr("arch_sec"),
		Severity:        floatPtr(0.9),
	}
	teamSize := &model.Question{
		ID:              uuid.NewString(),
		SectionID:       deliverySection.ID,
		QuestionnaireID: questionnaireID,
		Text:            "How many engineers deploy to production?",
		Type:            model.QuestionTypeNumber,
		IsRequired:      true,
		OrderIndex:      1,
	}
	pipeline := &model.Question{
		ID:              uuid.NewString(),
		SectionID:       deliverySection.ID,
		QuestionnaireID: questionnaireID,
		Text:            "Is infrastructure provisioned through code in a reviewed pipeline?",
		Type:            model.QuestionTypeSingleChoice,
		OrderIndex:      2,
		DimensionKey:    strPtr("devops_iac"),
		Severity:        floatPtr(0.8),
	}
	questions := []*model.Question{hasThreatModel, threatReview, encryption, teamSize, pipeline}
	for _, q := range questions {
		if err := a.QuestionRepo.Save(ctx, q); err != nil {
			return err
		}
	}

	rules := []*model.VisibilityRule{
		{
			// Review date only matters when a threat model exists
			ID:                uuid.NewString(),
			QuestionID:        hasThreatModel.ID,
			QuestionnaireID:   questionnaireID,
			Condition:         model.Leaf(hasThreatModel.ID, model.OpIn, []string{"threat-yes", "threat-partial"}),
			Action:            model.ActionShow,
			TargetQuestionIDs: []string{threatReview.ID},
			Priority:          10,
			IsActive:          true,
		},
		{
			ID:                uuid.NewString(),
			QuestionID:        hasThreatModel.ID,
			QuestionnaireID:   questionnaireID,
			Condition:         model.Leaf(hasThreatModel.ID, model.OpEquals, "threat-no"),
			Action:            model.ActionHide,
			TargetQuestionIDs: []string{threatReview.ID},
			Priority:          5,
			IsActive:          true,
		},
		{
			ID:              uuid.NewString(),
			QuestionID:      teamSize.ID,
			QuestionnaireID: questionnaireID,
			Condition: model.All(
				model.Leaf(teamSize.ID, model.OpIsNotEmpty, nil),
				model.Leaf(teamSize.ID, model.OpGreaterThan, 5),
			),
			Action:            model.ActionRequire,
			TargetQuestionIDs: []string{pipeline.ID},
			Priority:          1,
			IsActive:          true,
		},
	}
	for _, r := range rules {
		if err := a.RuleRepo.Save(ctx, r); err != nil {
			return err
		}
	}

	session := &model.Session{
		ID:              uuid.NewString(),
		QuestionnaireID: questionnaireID,
		UserID:          "user_seed",
		Status:          model.SessionInProgress,
		StartedAt:       time.Now().UTC(),
	}
	if err := a.SessionRepo.Create(ctx, session); err != nil {
		return err
	}

	answers := []struct {
		question *model.Question
		value    any
		coverage float64
	}{
		{hasThreatModel, map[string]any{model.KeySelectedOptionID: "threat-partial"}, 0.4},
		{encryption, map[string]any{model.KeySelectedOptionID: "transit"}, 0.5},
		{teamSize, 12, 1},
		{pipeline, map[string]any{model.KeySelectedOptionID: "partial"}, 0.3},
	}
	for _, ans := range answers {
		coverage := ans.coverage
		err := a.ResponseRepo.Save(ctx, &model.Response{
			ID:         uuid.NewString(),
			SessionID:  session.ID,
			QuestionID: ans.question.ID,
			Value:      ans.value,
			Coverage:   &coverage,
			AnsweredAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
	}

	log.Infof("Seeded questionnaire %s", questionnaireID)
	log.Infof("Seeded session %s", session.ID)
	return nil
}
