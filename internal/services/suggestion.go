package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/apperr"
	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/repos"
	"github.com/webclarity/clarity-backend/internal/types"
)

// lowScoreThreshold is the overall score below which the contrast
// recommendation fires.
const lowScoreThreshold = 80

// comfortableTextSize is the text scale the synthesizer nudges users toward.
const comfortableTextSize = 1.2

// maxGeneratedSuggestions caps how many records the fallback parser keeps,
// no matter how many numbered markers the backend emits.
const maxGeneratedSuggestions = 3

// userSuggestionLimit bounds the listing endpoint.
const userSuggestionLimit = 10

type SuggestionService interface {
	// Synthesize produces ranked suggestions from issues, score and the
	// user's profile state, persisting each one. When a text generation
	// backend is configured it is tried first; any backend failure falls
	// back to the deterministic rules and is never surfaced.
	Synthesize(ctx context.Context, userID uuid.UUID, domain, url string, issues []types.Issue, score *int) ([]*types.Suggestion, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.Suggestion, error)
	Apply(ctx context.Context, userID, suggestionID uuid.UUID) (*types.Suggestion, map[string]any, error)
	Dismiss(ctx context.Context, userID, suggestionID uuid.UUID) (*types.Suggestion, error)
	RecordFeedback(ctx context.Context, userID, suggestionID uuid.UUID, feedback string, rating *int) (*types.Suggestion, error)
}

// TextGenerator is the untrusted free-text backend behind the fallback path.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

type suggestionService struct {
	db             *gorm.DB
	log            *logger.Logger
	suggestionRepo repos.SuggestionRepo
	profileService ProfileService
	usageService   UsageService
	generator      TextGenerator
}

func NewSuggestionService(db *gorm.DB, baseLog *logger.Logger, suggestionRepo repos.SuggestionRepo, profileService ProfileService, usageService UsageService, generator TextGenerator) SuggestionService {
	return &suggestionService{
		db:             db,
		log:            baseLog.With("service", "SuggestionService"),
		suggestionRepo: suggestionRepo,
		profileService: profileService,
		usageService:   usageService,
		generator:      generator,
	}
}

func priorityRank(priority string) int {
	switch priority {
	case types.PriorityHigh:
		return 3
	case types.PriorityMedium:
		return 2
	case types.PriorityLow:
		return 1
	default:
		return 0
	}
}

// rankSuggestions orders by descending confidence, ties by descending
// priority rank, then by creation order (stable).
func rankSuggestions(suggestions []*types.Suggestion) {
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return priorityRank(suggestions[i].Priority) > priorityRank(suggestions[j].Priority)
	})
}

func (ss *suggestionService) Synthesize(ctx context.Context, userID uuid.UUID, domain, url string, issues []types.Issue, score *int) ([]*types.Suggestion, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}

	profile, err := ss.profileService.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	var suggestions []*types.Suggestion
	if ss.generator != nil {
		generated, genErr := ss.synthesizeGenerated(ctx, userID, domain, url, issues, score)
		if genErr != nil {
			// Backend failures are recovered locally; the caller only ever
			// sees the rule-based result.
			ss.log.Warn("Generation backend failed, using rule-based suggestions", "domain", domain, "error", genErr)
		} else {
			suggestions = generated
		}
	}
	if suggestions == nil {
		suggestions = ss.ruleBasedSuggestions(userID, domain, url, issues, score, profile)
	}

	if _, err := ss.suggestionRepo.Create(ctx, nil, suggestions); err != nil {
		return nil, err
	}

	ss.usageService.Record(userID, "suggestions_generated", domain, url, map[string]any{
		"count": len(suggestions),
	})

	rankSuggestions(suggestions)
	return suggestions, nil
}

// ruleBasedSuggestions is the deterministic path. Each rule contributes at
// most one suggestion, evaluated in fixed order.
func (ss *suggestionService) ruleBasedSuggestions(userID uuid.UUID, domain, url string, issues []types.Issue, score *int, profile *types.AccessibilityProfile) []*types.Suggestion {
	now := time.Now().UTC()
	var out []*types.Suggestion

	newSuggestion := func(title, description, sType string, confidence float64, priority string) *types.Suggestion {
		return &types.Suggestion{
			ID:             uuid.New(),
			UserID:         userID,
			Title:          title,
			Description:    description,
			SuggestionType: sType,
			Domain:         domain,
			URL:            url,
			Confidence:     confidence,
			Priority:       priority,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}

	if score != nil && *score < lowScoreThreshold {
		out = append(out, newSuggestion(
			"Enable High Contrast Mode",
			"Based on the accessibility issues detected, enabling high contrast mode would improve readability significantly.",
			types.SuggestionVisual, 0.8, types.PriorityHigh,
		))
	}

	for _, issue := range issues {
		if issue.Kind == types.IssueMissingAltText {
			out = append(out, newSuggestion(
				"Enable Image Descriptions",
				"This page has images without descriptions. Consider enabling our AI-powered image description feature.",
				types.SuggestionInterface, 0.9, types.PriorityMedium,
			))
			break
		}
	}

	if profile != nil && profile.TextSize < comfortableTextSize {
		out = append(out, newSuggestion(
			"Increase Text Size",
			"Based on your usage patterns, increasing text size to 1.2x might improve your reading experience.",
			types.SuggestionVisual, 0.7, types.PriorityLow,
		))
	}

	return out
}

func (ss *suggestionService) synthesizeGenerated(ctx context.Context, userID uuid.UUID, domain, url string, issues []types.Issue, score *int) ([]*types.Suggestion, error) {
	prompt := buildSuggestionPrompt(domain, url, issues, score)
	text, err := ss.generator.GenerateText(ctx, "You are an accessibility expert providing personalized suggestions.", prompt)
	if err != nil {
		return nil, err
	}
	records := parseGeneratedSuggestions(text)
	if len(records) == 0 {
		return nil, apperr.BackendUnavailablef("backend returned no parseable suggestions")
	}

	now := time.Now().UTC()
	out := make([]*types.Suggestion, 0, len(records))
	for _, rec := range records {
		out = append(out, &types.Suggestion{
			ID:             uuid.New(),
			UserID:         userID,
			Title:          rec.title,
			Description:    rec.description,
			SuggestionType: types.SuggestionVisual,
			Domain:         domain,
			URL:            url,
			Confidence:     0.8,
			Priority:       types.PriorityMedium,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return out, nil
}

func buildSuggestionPrompt(domain, url string, issues []types.Issue, score *int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User is browsing %s (%s).\n", domain, url)
	if score != nil {
		fmt.Fprintf(&sb, "Current accessibility score: %d\n", *score)
	} else {
		sb.WriteString("Current accessibility score: unknown\n")
	}
	if len(issues) == 0 {
		sb.WriteString("Issues found: none\n")
	} else {
		sb.WriteString("Issues found:\n")
		for _, issue := range issues {
			fmt.Fprintf(&sb, "- %s (%s): %s\n", issue.Kind, issue.Severity, issue.Description)
		}
	}
	sb.WriteString("\nGenerate 3 personalized accessibility suggestions to improve their browsing experience. ")
	sb.WriteString("Focus on practical, actionable recommendations. Number them 1. 2. 3.")
	return sb.String()
}

type parsedSuggestion struct {
	title       string
	description string
}

// parseGeneratedSuggestions segments untrusted free text into at most three
// suggestion records. Numbered lines ("1.", "2.", "3.") open a record and
// subsequent non-empty lines extend the open record's description. Lines
// before the first marker are conversational preamble and are discarded;
// only when the text carries no numbering at all do they become a single
// record.
func parseGeneratedSuggestions(text string) []parsedSuggestion {
	var records []parsedSuggestion
	var current *parsedSuggestion
	var preamble []string
	sawMarker := false

	flush := func() {
		if current == nil {
			return
		}
		if current.title == "" {
			current.title = "AI Suggestion"
		}
		records = append(records, *current)
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if body, ok := stripListMarker(line); ok {
			sawMarker = true
			flush()
			if len(records) >= maxGeneratedSuggestions {
				break
			}
			current = &parsedSuggestion{title: body, description: body}
			continue
		}
		if current != nil {
			current.description += " " + line
			continue
		}
		preamble = append(preamble, line)
	}
	if len(records) < maxGeneratedSuggestions {
		flush()
	}
	if !sawMarker && len(preamble) > 0 {
		records = append(records, parsedSuggestion{
			title:       preamble[0],
			description: strings.Join(preamble, " "),
		})
	}
	return records
}

// stripListMarker reports whether the line opens a numbered list item and
// returns the line without its marker.
func stripListMarker(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(line) || line[i] != '.' {
		return "", false
	}
	return strings.TrimSpace(line[i+1:]), true
}

func (ss *suggestionService) List(ctx context.Context, userID uuid.UUID) ([]*types.Suggestion, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}
	return ss.suggestionRepo.ListActiveByUser(ctx, nil, userID, userSuggestionLimit)
}

func (ss *suggestionService) Apply(ctx context.Context, userID, suggestionID uuid.UUID) (*types.Suggestion, map[string]any, error) {
	suggestion, err := ss.getOwned(ctx, userID, suggestionID)
	if err != nil {
		return nil, nil, err
	}
	if suggestion.Dismissed {
		return nil, nil, apperr.Validationf("suggestion %s was dismissed", suggestionID)
	}
	if !suggestion.Applied {
		now := time.Now().UTC()
		suggestion.Applied = true
		suggestion.AppliedAt = &now
		suggestion.UpdatedAt = now
		if err := ss.suggestionRepo.Save(ctx, nil, suggestion); err != nil {
			return nil, nil, err
		}
		ss.usageService.Record(userID, "suggestion_applied", suggestion.Domain, suggestion.URL, map[string]any{
			"suggestion_id": suggestion.ID.String(),
		})
	}
	return suggestion, derivedSettings(suggestion), nil
}

// derivedSettings maps an applied suggestion onto the profile fields it
// implies, for the client to merge.
func derivedSettings(suggestion *types.Suggestion) map[string]any {
	applied := map[string]any{}
	if suggestion.SuggestionType == types.SuggestionVisual {
		title := strings.ToLower(suggestion.Title)
		if strings.Contains(title, "contrast") {
			applied["contrast_level"] = 150
		} else if strings.Contains(title, "text") {
			applied["text_size"] = comfortableTextSize
		}
	}
	return applied
}

func (ss *suggestionService) Dismiss(ctx context.Context, userID, suggestionID uuid.UUID) (*types.Suggestion, error) {
	suggestion, err := ss.getOwned(ctx, userID, suggestionID)
	if err != nil {
		return nil, err
	}
	if suggestion.Applied {
		return nil, apperr.Validationf("suggestion %s was already applied", suggestionID)
	}
	if !suggestion.Dismissed {
		suggestion.Dismissed = true
		suggestion.UpdatedAt = time.Now().UTC()
		if err := ss.suggestionRepo.Save(ctx, nil, suggestion); err != nil {
			return nil, err
		}
	}
	return suggestion, nil
}

func (ss *suggestionService) RecordFeedback(ctx context.Context, userID, suggestionID uuid.UUID, feedback string, rating *int) (*types.Suggestion, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, apperr.Validationf("rating must be between 1 and 5")
	}
	suggestion, err := ss.getOwned(ctx, userID, suggestionID)
	if err != nil {
		return nil, err
	}
	suggestion.Feedback = feedback
	if rating != nil {
		suggestion.Rating = rating
	}
	suggestion.UpdatedAt = time.Now().UTC()
	if err := ss.suggestionRepo.Save(ctx, nil, suggestion); err != nil {
		return nil, err
	}
	return suggestion, nil
}

func (ss *suggestionService) getOwned(ctx context.Context, userID, suggestionID uuid.UUID) (*types.Suggestion, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}
	suggestion, err := ss.suggestionRepo.GetByIDForUser(ctx, nil, suggestionID, userID)
	if err != nil {
		return nil, err
	}
	if suggestion == nil {
		return nil, apperr.NotFoundf("suggestion %s", suggestionID)
	}
	return suggestion, nil
}
