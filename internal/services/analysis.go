package services

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/apperr"
	"github.com/webclarity/clarity-backend/internal/logger"
	"github.com/webclarity/clarity-backend/internal/repos"
	"github.com/webclarity/clarity-backend/internal/types"
)

// AnalysisResult is the outcome of one AnalyzeURL call.
type AnalysisResult struct {
	AnalysisID   uuid.UUID           `json:"analysis_id"`
	URL          string              `json:"url"`
	Domain       string              `json:"domain"`
	OverallScore int                 `json:"overall_score"`
	Scores       Scores              `json:"scores"`
	Issues       []types.Issue       `json:"issues"`
	Suggestions  []*types.Suggestion `json:"ai_suggestions,omitempty"`
}

type AnalysisService interface {
	// AnalyzeURL fetches the page, scores it, and persists the immutable
	// Analysis record. A fetch failure persists nothing. When
	// includeSuggestions is set the synthesizer runs against the fresh
	// result.
	AnalyzeURL(ctx context.Context, userID uuid.UUID, rawURL string, includeSuggestions bool) (*AnalysisResult, error)
}

type analysisService struct {
	db                *gorm.DB
	log               *logger.Logger
	fetcher           PageFetcher
	analysisRepo      repos.AnalysisRepo
	suggestionService SuggestionService
	usageService      UsageService
}

func NewAnalysisService(db *gorm.DB, baseLog *logger.Logger, fetcher PageFetcher, analysisRepo repos.AnalysisRepo, suggestionService SuggestionService, usageService UsageService) AnalysisService {
	return &analysisService{
		db:                db,
		log:               baseLog.With("service", "AnalysisService"),
		fetcher:           fetcher,
		analysisRepo:      analysisRepo,
		suggestionService: suggestionService,
		usageService:      usageService,
	}
}

func (as *analysisService) AnalyzeURL(ctx context.Context, userID uuid.UUID, rawURL string, includeSuggestions bool) (*AnalysisResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, apperr.Validationf("url is required")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, apperr.Validationf("url %q is not a valid http(s) address", rawURL)
	}
	domain := parsed.Host

	markup, err := as.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		// Failed fetches leave no analysis record behind.
		return nil, err
	}

	issues, scores := Analyze(markup)

	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return nil, err
	}

	var analyzedBy *uuid.UUID
	if userID != uuid.Nil {
		analyzedBy = &userID
	}
	analysis := &types.Analysis{
		ID:              uuid.New(),
		URL:             rawURL,
		Domain:          domain,
		OverallScore:    scores.Overall(),
		ContrastScore:   scores.Contrast,
		StructureScore:  scores.Structure,
		NavigationScore: scores.Navigation,
		ContentScore:    scores.Content,
		Issues:          datatypes.JSON(issuesJSON),
		AnalyzedByID:    analyzedBy,
		AnalyzedAt:      time.Now().UTC(),
	}
	if _, err := as.analysisRepo.Create(ctx, nil, analysis); err != nil {
		return nil, err
	}

	domainTotal, err := as.analysisRepo.CountByDomain(ctx, nil, domain)
	if err != nil {
		as.log.Warn("Domain analysis count failed", "domain", domain, "error", err)
	}
	as.usageService.Record(userID, "website_analyzed", domain, rawURL, map[string]any{
		"overall_score": scores.Overall(),
		"issue_count":   len(issues),
		"domain_total":  domainTotal,
	})

	result := &AnalysisResult{
		AnalysisID:   analysis.ID,
		URL:          rawURL,
		Domain:       domain,
		OverallScore: scores.Overall(),
		Scores:       scores,
		Issues:       issues,
	}

	if includeSuggestions && userID != uuid.Nil {
		overall := scores.Overall()
		suggestions, err := as.suggestionService.Synthesize(ctx, userID, domain, rawURL, issues, &overall)
		if err != nil {
			// Suggestions are an add-on here; a failure does not void the
			// completed analysis.
			as.log.Warn("Suggestion synthesis after analysis failed", "domain", domain, "error", err)
		} else {
			result.Suggestions = suggestions
		}
	}

	return result, nil
}
