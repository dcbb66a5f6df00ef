package services

import (
	"reflect"
	"testing"

	"github.com/webclarity/clarity-backend/internal/types"
)

const badMarkup = `<html><body>
<p>Welcome to our store.</p>
<img src="product1.png">
<img src="product2.png">
<img src="product3.png">
</body></html>`

func TestAnalyzeFlagsMissingAltAndHeadings(t *testing.T) {
	issues, scores := Analyze([]byte(badMarkup))

	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %#v", len(issues), issues)
	}
	if issues[0].Kind != types.IssueMissingAltText {
		t.Fatalf("expected first issue %s, got %s", types.IssueMissingAltText, issues[0].Kind)
	}
	if issues[0].ElementCount != 3 {
		t.Fatalf("expected 3 affected images, got %d", issues[0].ElementCount)
	}
	if issues[0].Severity != types.SeverityMedium {
		t.Fatalf("expected medium severity, got %s", issues[0].Severity)
	}
	if issues[1].Kind != types.IssueMissingHeadings {
		t.Fatalf("expected second issue %s, got %s", types.IssueMissingHeadings, issues[1].Kind)
	}
	if issues[1].Severity != types.SeverityHigh {
		t.Fatalf("expected high severity, got %s", issues[1].Severity)
	}

	want := Scores{Contrast: 80, Structure: 50, Navigation: 75, Content: 70}
	if scores != want {
		t.Fatalf("expected scores %+v, got %+v", want, scores)
	}
	if scores.Overall() != 68 {
		t.Fatalf("expected overall 68, got %d", scores.Overall())
	}
}

func TestAnalyzeCleanPage(t *testing.T) {
	markup := `<html><body>
<h1>Catalog</h1>
<img src="product.png" alt="A red bicycle">
<a href="/about">About us</a>
</body></html>`

	issues, scores := Analyze([]byte(markup))
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %#v", issues)
	}
	want := Scores{Contrast: 80, Structure: 70, Navigation: 75, Content: 80}
	if scores != want {
		t.Fatalf("expected baseline scores %+v, got %+v", want, scores)
	}
	if scores.Overall() != 76 {
		t.Fatalf("expected overall 76, got %d", scores.Overall())
	}
}

func TestAnalyzeEmptyAltCountsAsPresent(t *testing.T) {
	markup := `<html><body><h1>Hi</h1><img src="spacer.gif" alt=""></body></html>`
	issues, _ := Analyze([]byte(markup))
	for _, issue := range issues {
		if issue.Kind == types.IssueMissingAltText {
			t.Fatalf("decorative image with empty alt should not be flagged: %#v", issue)
		}
	}
}

func TestAnalyzeEmptyLinkText(t *testing.T) {
	markup := `<html><body><h1>Hi</h1>
<a href="/one"></a>
<a href="/two" aria-label="Two"></a>
<a href="/three"><img src="i.png" alt="Three"></a>
<a href="/four">Four</a>
</body></html>`

	issues, scores := Analyze([]byte(markup))
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %#v", issues)
	}
	if issues[0].Kind != types.IssueEmptyLinkText || issues[0].ElementCount != 1 {
		t.Fatalf("unexpected issue: %#v", issues[0])
	}
	if scores.Navigation != 65 {
		t.Fatalf("expected navigation 65, got %d", scores.Navigation)
	}
}

func TestAnalyzeFormLabels(t *testing.T) {
	markup := `<html><body><h1>Signup</h1><form>
<input type="text" name="unlabelled">
<input type="hidden" name="csrf">
<input type="submit" value="Go">
<label for="email">Email</label><input type="email" id="email">
<label>Phone <input type="tel" name="phone"></label>
<input type="text" aria-label="Nickname">
</form></body></html>`

	issues, scores := Analyze([]byte(markup))
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %#v", issues)
	}
	if issues[0].Kind != types.IssueMissingFormLabels || issues[0].ElementCount != 1 {
		t.Fatalf("unexpected issue: %#v", issues[0])
	}
	if scores.Navigation != 60 {
		t.Fatalf("expected navigation 60, got %d", scores.Navigation)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	issuesA, scoresA := Analyze([]byte(badMarkup))
	issuesB, scoresB := Analyze([]byte(badMarkup))
	if !reflect.DeepEqual(issuesA, issuesB) || scoresA != scoresB {
		t.Fatalf("analysis of identical markup diverged: %#v vs %#v", issuesA, issuesB)
	}
}

func TestAnalyzeMalformedMarkup(t *testing.T) {
	issues, scores := Analyze([]byte(`<div><p>broken<img src="x.png"`))
	if len(issues) == 0 {
		t.Fatalf("expected issues on malformed markup, got none")
	}
	for _, issue := range issues {
		if issue.Kind == types.IssueMissingAltText && issue.ElementCount != 1 {
			t.Fatalf("expected img to survive parse recovery: %#v", issue)
		}
	}
	if scores.Overall() < 0 || scores.Overall() > 100 {
		t.Fatalf("overall out of range: %d", scores.Overall())
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-5, 0},
		{0, 0},
		{42, 42},
		{100, 100},
		{130, 100},
	}
	for _, tc := range cases {
		if got := clampScore(tc.in); got != tc.want {
			t.Fatalf("clampScore(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
