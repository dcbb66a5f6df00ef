package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/webclarity/clarity-backend/internal/apperr"
	"github.com/webclarity/clarity-backend/internal/repos"
	"github.com/webclarity/clarity-backend/internal/types"
)

type stubGenerator struct {
	text string
	err  error
}

func (s *stubGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	return s.text, s.err
}

func newSuggestionFixture(t *testing.T, generator TextGenerator) (*gorm.DB, SuggestionService, ProfileService) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	suggestionRepo := repos.NewSuggestionRepo(db, log)
	profileService := NewProfileService(db, log, repos.NewProfileRepo(db, log))
	usageService := NewUsageService(log, repos.NewUsageEventRepo(db, log))
	svc := NewSuggestionService(db, log, suggestionRepo, profileService, usageService, generator)
	return db, svc, profileService
}

func intPtr(v int) *int { return &v }

func TestSynthesizeRuleBased(t *testing.T) {
	db, svc, _ := newSuggestionFixture(t, nil)
	ctx := context.Background()
	userID := uuid.New()

	issues := []types.Issue{
		{Kind: types.IssueMissingAltText, Severity: types.SeverityMedium, Description: "3 images missing alt text", ElementCount: 3},
		{Kind: types.IssueMissingHeadings, Severity: types.SeverityHigh, Description: "No heading structure found"},
	}

	suggestions, err := svc.Synthesize(ctx, userID, "shop.example.com", "https://shop.example.com/", issues, intPtr(65))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}

	// Ranked by confidence: image descriptions (0.9), contrast (0.8),
	// text size (0.7).
	if suggestions[0].Title != "Enable Image Descriptions" || suggestions[0].Confidence != 0.9 {
		t.Fatalf("unexpected first suggestion: %+v", suggestions[0])
	}
	if suggestions[1].Title != "Enable High Contrast Mode" || suggestions[1].Confidence != 0.8 {
		t.Fatalf("unexpected second suggestion: %+v", suggestions[1])
	}
	if suggestions[2].Title != "Increase Text Size" || suggestions[2].Confidence != 0.7 {
		t.Fatalf("unexpected third suggestion: %+v", suggestions[2])
	}
	if suggestions[1].Priority != types.PriorityHigh || suggestions[1].SuggestionType != types.SuggestionVisual {
		t.Fatalf("contrast suggestion mislabeled: %+v", suggestions[1])
	}
	if suggestions[0].Priority != types.PriorityMedium || suggestions[0].SuggestionType != types.SuggestionInterface {
		t.Fatalf("image suggestion mislabeled: %+v", suggestions[0])
	}

	var count int64
	if err := db.Model(&types.Suggestion{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count suggestions: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 persisted suggestions, got %d", count)
	}
}

func TestSynthesizeAltRuleFiresOncePerPage(t *testing.T) {
	_, svc, _ := newSuggestionFixture(t, nil)

	issues := []types.Issue{
		{Kind: types.IssueMissingAltText, ElementCount: 2},
		{Kind: types.IssueMissingAltText, ElementCount: 5},
	}
	suggestions, err := svc.Synthesize(context.Background(), uuid.New(), "a.example.com", "https://a.example.com/", issues, intPtr(90))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	imageCount := 0
	for _, suggestion := range suggestions {
		if suggestion.Title == "Enable Image Descriptions" {
			imageCount++
		}
	}
	if imageCount != 1 {
		t.Fatalf("expected exactly one image suggestion, got %d", imageCount)
	}
}

func TestSynthesizeNothingToSuggest(t *testing.T) {
	_, svc, profileService := newSuggestionFixture(t, nil)
	ctx := context.Background()
	userID := uuid.New()

	// Comfortable text size disables the last remaining rule.
	if _, err := profileService.MergeUpdate(ctx, userID, map[string]any{"text_size": 1.5}); err != nil {
		t.Fatalf("prepare profile: %v", err)
	}

	suggestions, err := svc.Synthesize(ctx, userID, "good.example.com", "https://good.example.com/", nil, intPtr(95))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %#v", suggestions)
	}
}

func TestSynthesizeGeneratorFailureFallsBack(t *testing.T) {
	_, svc, _ := newSuggestionFixture(t, &stubGenerator{err: apperr.BackendUnavailablef("boom")})

	suggestions, err := svc.Synthesize(context.Background(), uuid.New(), "x.example.com", "https://x.example.com/", nil, intPtr(50))
	if err != nil {
		t.Fatalf("backend failure must not surface: %v", err)
	}
	if len(suggestions) == 0 {
		t.Fatalf("expected rule-based fallback suggestions")
	}
	if suggestions[0].Title != "Enable High Contrast Mode" {
		t.Fatalf("unexpected fallback: %+v", suggestions[0])
	}
}

func TestSynthesizeGeneratorOutput(t *testing.T) {
	text := "1. Turn on high contrast\nIt helps with glare.\n2. Increase line height\n3. Use reading mode"
	_, svc, _ := newSuggestionFixture(t, &stubGenerator{text: text})

	suggestions, err := svc.Synthesize(context.Background(), uuid.New(), "y.example.com", "https://y.example.com/", nil, intPtr(70))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 generated suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Title != "Turn on high contrast" {
		t.Fatalf("unexpected title: %q", suggestions[0].Title)
	}
	if suggestions[0].Description != "Turn on high contrast It helps with glare." {
		t.Fatalf("continuation line not appended: %q", suggestions[0].Description)
	}
	for _, suggestion := range suggestions {
		if suggestion.Confidence != 0.8 || suggestion.Priority != types.PriorityMedium {
			t.Fatalf("generated suggestion mislabeled: %+v", suggestion)
		}
	}
}

func TestParseGeneratedSuggestions(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		titles []string
	}{
		{
			name:   "numbered",
			text:   "1. First tip\n2. Second tip\n3. Third tip",
			titles: []string{"First tip", "Second tip", "Third tip"},
		},
		{
			name:   "caps at three",
			text:   "1. A\n2. B\n3. C\n4. D\n5. E",
			titles: []string{"A", "B", "C"},
		},
		{
			name:   "unnumbered text yields one record",
			text:   "Consider enabling dark mode for evening browsing.\nIt reduces eye strain.",
			titles: []string{"Consider enabling dark mode for evening browsing."},
		},
		{
			name:   "blank input",
			text:   "  \n\n  ",
			titles: nil,
		},
		{
			name:   "preamble before numbering is discarded",
			text:   "Here are some ideas:\n1. Bigger cursor\n2. Pause animations",
			titles: []string{"Bigger cursor", "Pause animations"},
		},
		{
			name:   "chatty preamble keeps all three items",
			text:   "Sure! Here are three suggestions:\n1. Enable high contrast\n2. Increase text size\n3. Turn on reading mode",
			titles: []string{"Enable high contrast", "Increase text size", "Turn on reading mode"},
		},
		{
			name:   "multi-line unnumbered text joins into one record",
			text:   "Try the reading mode.\nIt strips clutter from dense pages.",
			titles: []string{"Try the reading mode."},
		},
	}
	for _, tc := range cases {
		records := parseGeneratedSuggestions(tc.text)
		if len(records) != len(tc.titles) {
			t.Fatalf("%s: expected %d records, got %#v", tc.name, len(tc.titles), records)
		}
		for i, title := range tc.titles {
			if records[i].title != title {
				t.Fatalf("%s: record %d title %q, want %q", tc.name, i, records[i].title, title)
			}
		}
	}
}

func TestParseGeneratedSuggestionsUnnumberedDescription(t *testing.T) {
	records := parseGeneratedSuggestions("Try the reading mode.\nIt strips clutter from dense pages.")
	if len(records) != 1 {
		t.Fatalf("expected one record, got %#v", records)
	}
	if records[0].description != "Try the reading mode. It strips clutter from dense pages." {
		t.Fatalf("unexpected description: %q", records[0].description)
	}
}

func TestStripListMarker(t *testing.T) {
	cases := []struct {
		in   string
		body string
		ok   bool
	}{
		{"1. Foo", "Foo", true},
		{"12.Bar", "Bar", true},
		{"3.", "", true},
		{"a. nope", "", false},
		{"no numbering", "", false},
		{"42", "", false},
	}
	for _, tc := range cases {
		body, ok := stripListMarker(tc.in)
		if ok != tc.ok || body != tc.body {
			t.Fatalf("stripListMarker(%q) = (%q, %v), want (%q, %v)", tc.in, body, ok, tc.body, tc.ok)
		}
	}
}

func TestRankSuggestionsTieBreaksOnPriority(t *testing.T) {
	a := &types.Suggestion{Title: "a", Confidence: 0.8, Priority: types.PriorityMedium}
	b := &types.Suggestion{Title: "b", Confidence: 0.8, Priority: types.PriorityHigh}
	c := &types.Suggestion{Title: "c", Confidence: 0.9, Priority: types.PriorityLow}

	list := []*types.Suggestion{a, b, c}
	rankSuggestions(list)
	if list[0] != c || list[1] != b || list[2] != a {
		t.Fatalf("unexpected order: %s, %s, %s", list[0].Title, list[1].Title, list[2].Title)
	}
}

func TestSuggestionLifecycle(t *testing.T) {
	_, svc, _ := newSuggestionFixture(t, nil)
	ctx := context.Background()
	userID := uuid.New()

	suggestions, err := svc.Synthesize(ctx, userID, "shop.example.com", "https://shop.example.com/", nil, intPtr(60))
	if err != nil || len(suggestions) < 2 {
		t.Fatalf("seed suggestions: %v (%d)", err, len(suggestions))
	}
	contrast := suggestions[0] // "Enable High Contrast Mode", ranked first
	textSize := suggestions[1]

	applied, settings, err := svc.Apply(ctx, userID, contrast.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !applied.Applied || applied.AppliedAt == nil {
		t.Fatalf("apply did not mark the record: %+v", applied)
	}
	if settings["contrast_level"] != 150 {
		t.Fatalf("expected derived contrast setting, got %#v", settings)
	}

	// Applying again is a no-op, not an error.
	again, _, err := svc.Apply(ctx, userID, contrast.ID)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if again.AppliedAt == nil || again.AppliedAt.Unix() != applied.AppliedAt.Unix() {
		t.Fatalf("second apply moved the timestamp")
	}

	// An applied suggestion can no longer be dismissed.
	if _, err := svc.Dismiss(ctx, userID, contrast.ID); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error dismissing an applied suggestion, got %v", err)
	}

	// Dismissal is terminal the other way around.
	if _, err := svc.Dismiss(ctx, userID, textSize.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if _, err := svc.Dismiss(ctx, userID, textSize.ID); err != nil {
		t.Fatalf("second dismiss should be a no-op: %v", err)
	}
	if _, _, err := svc.Apply(ctx, userID, textSize.ID); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error applying a dismissed suggestion, got %v", err)
	}

	// Dismissed suggestions drop out of the active listing.
	active, err := svc.List(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, suggestion := range active {
		if suggestion.ID == textSize.ID {
			t.Fatalf("dismissed suggestion still listed")
		}
	}
}

func TestSuggestionFeedback(t *testing.T) {
	_, svc, _ := newSuggestionFixture(t, nil)
	ctx := context.Background()
	userID := uuid.New()

	suggestions, err := svc.Synthesize(ctx, userID, "z.example.com", "https://z.example.com/", nil, intPtr(60))
	if err != nil || len(suggestions) == 0 {
		t.Fatalf("seed suggestions: %v", err)
	}
	target := suggestions[0]

	if _, err := svc.RecordFeedback(ctx, userID, target.ID, "great", intPtr(6)); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for rating 6, got %v", err)
	}
	updated, err := svc.RecordFeedback(ctx, userID, target.ID, "very helpful", intPtr(5))
	if err != nil {
		t.Fatalf("feedback: %v", err)
	}
	if updated.Feedback != "very helpful" || updated.Rating == nil || *updated.Rating != 5 {
		t.Fatalf("feedback not stored: %+v", updated)
	}

	// Feedback stays allowed after dismissal.
	if _, err := svc.Dismiss(ctx, userID, target.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if _, err := svc.RecordFeedback(ctx, userID, target.ID, "changed my mind", nil); err != nil {
		t.Fatalf("feedback on dismissed suggestion: %v", err)
	}
}

func TestSuggestionOwnership(t *testing.T) {
	_, svc, _ := newSuggestionFixture(t, nil)
	ctx := context.Background()
	owner := uuid.New()

	suggestions, err := svc.Synthesize(ctx, owner, "w.example.com", "https://w.example.com/", nil, intPtr(60))
	if err != nil || len(suggestions) == 0 {
		t.Fatalf("seed suggestions: %v", err)
	}
	stranger := uuid.New()
	if _, _, err := svc.Apply(ctx, stranger, suggestions[0].ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found for foreign user, got %v", err)
	}
}

func TestDerivedSettings(t *testing.T) {
	cases := []struct {
		suggestion types.Suggestion
		key        string
		want       any
	}{
		{types.Suggestion{SuggestionType: types.SuggestionVisual, Title: "Enable High Contrast Mode"}, "contrast_level", 150},
		{types.Suggestion{SuggestionType: types.SuggestionVisual, Title: "Increase Text Size"}, "text_size", 1.2},
	}
	for _, tc := range cases {
		got := derivedSettings(&tc.suggestion)
		if fmt.Sprintf("%v", got[tc.key]) != fmt.Sprintf("%v", tc.want) {
			t.Fatalf("derivedSettings(%q) = %#v", tc.suggestion.Title, got)
		}
	}
	if got := derivedSettings(&types.Suggestion{SuggestionType: types.SuggestionInterface, Title: "Enable Image Descriptions"}); len(got) != 0 {
		t.Fatalf("interface suggestions derive no settings: %#v", got)
	}
}
