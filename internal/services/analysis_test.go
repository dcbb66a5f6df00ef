package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/apperr"
	"github.com/webclarity/clarity-backend/internal/repos"
	"github.com/webclarity/clarity-backend/internal/types"
)

func newAnalysisFixture(t *testing.T) (*gorm.DB, AnalysisService) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	usageService := NewUsageService(log, repos.NewUsageEventRepo(db, log))
	profileService := NewProfileService(db, log, repos.NewProfileRepo(db, log))
	suggestionService := NewSuggestionService(db, log, repos.NewSuggestionRepo(db, log), profileService, usageService, nil)
	fetcher := &pageFetcher{log: log, client: &http.Client{}, timeout: 2 * time.Second}
	svc := NewAnalysisService(db, log, fetcher, repos.NewAnalysisRepo(db, log), suggestionService, usageService)
	return db, svc
}

func TestAnalyzeURLPersistsAnalysisWithSuggestions(t *testing.T) {
	db, svc := newAnalysisFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(badMarkup))
	}))
	defer srv.Close()

	userID := uuid.New()
	result, err := svc.AnalyzeURL(context.Background(), userID, srv.URL, true)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.OverallScore != 68 {
		t.Fatalf("expected overall 68, got %d", result.OverallScore)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %#v", result.Issues)
	}
	// Overall 68 is below the contrast threshold, the page has alt issues
	// and the fresh profile uses the default text size: all three rules fire.
	if len(result.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(result.Suggestions))
	}

	var stored types.Analysis
	if err := db.Where("id = ?", result.AnalysisID).First(&stored).Error; err != nil {
		t.Fatalf("reload analysis: %v", err)
	}
	if stored.OverallScore != 68 || stored.ContrastScore != 80 || stored.StructureScore != 50 {
		t.Fatalf("unexpected stored scores: %+v", stored)
	}
	if stored.NavigationScore != 75 || stored.ContentScore != 70 {
		t.Fatalf("unexpected stored scores: %+v", stored)
	}
	if stored.AnalyzedByID == nil || *stored.AnalyzedByID != userID {
		t.Fatalf("analysis not attributed to the user: %+v", stored)
	}
	var issues []types.Issue
	if err := json.Unmarshal(stored.Issues, &issues); err != nil || len(issues) != 2 {
		t.Fatalf("stored issues not decodable: %v (%#v)", err, issues)
	}
}

func TestAnalyzeURLWithoutSuggestions(t *testing.T) {
	db, svc := newAnalysisFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(badMarkup))
	}))
	defer srv.Close()

	result, err := svc.AnalyzeURL(context.Background(), uuid.New(), srv.URL, false)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if result.Suggestions != nil {
		t.Fatalf("expected no suggestions, got %#v", result.Suggestions)
	}
	var count int64
	if err := db.Model(&types.Suggestion{}).Count(&count).Error; err != nil {
		t.Fatalf("count suggestions: %v", err)
	}
	if count != 0 {
		t.Fatalf("suggestions persisted despite opt-out: %d", count)
	}
}

func TestAnalyzeURLValidation(t *testing.T) {
	_, svc := newAnalysisFixture(t)
	ctx := context.Background()

	for _, raw := range []string{"", "   ", "ftp://example.com", "not a url", "example.com/page"} {
		_, err := svc.AnalyzeURL(ctx, uuid.New(), raw, false)
		if !apperr.IsValidation(err) {
			t.Fatalf("expected validation error for %q, got %v", raw, err)
		}
	}
}

func TestAnalyzeURLFetchFailureLeavesNoRecord(t *testing.T) {
	db, svc := newAnalysisFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := svc.AnalyzeURL(context.Background(), uuid.New(), srv.URL, true)
	if !apperr.IsFetch(err) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	var count int64
	if err := db.Model(&types.Analysis{}).Count(&count).Error; err != nil {
		t.Fatalf("count analyses: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed fetch left %d analysis records", count)
	}
}
