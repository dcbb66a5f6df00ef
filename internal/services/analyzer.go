package services

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/webclarity/clarity-backend/internal/types"
)

// Sub-score baselines. Rules only ever subtract from these.
const (
	baselineContrast   = 80
	baselineStructure  = 70
	baselineNavigation = 75
	baselineContent    = 80
)

// Scores holds the four sub-scores of one analysis run, each clamped to
// [0, 100].
type Scores struct {
	Contrast   int `json:"contrast"`
	Structure  int `json:"structure"`
	Navigation int `json:"navigation"`
	Content    int `json:"content"`
}

// Overall is the integer mean of the four sub-scores.
func (s Scores) Overall() int {
	return (s.Contrast + s.Structure + s.Navigation + s.Content) / 4
}

// pageFacts are the element counts one DOM pass collects. Rules read facts;
// they never read each other's output, so evaluation order cannot change the
// result.
type pageFacts struct {
	imagesMissingAlt int
	headings         int
	anchorsEmptyText int
	inputsMissingLab int
}

// detectionRule turns page facts into at most one issue plus a penalty
// against exactly one sub-score dimension.
type detectionRule struct {
	kind     string
	severity string
	penalty  int
	apply    func(target *Scores, penalty int)
	evaluate func(facts pageFacts) (count int, fired bool, description string)
}

var detectionRules = []detectionRule{
	{
		kind:     types.IssueMissingAltText,
		severity: types.SeverityMedium,
		penalty:  10,
		apply:    func(s *Scores, p int) { s.Content = clampScore(s.Content - p) },
		evaluate: func(f pageFacts) (int, bool, string) {
			if f.imagesMissingAlt == 0 {
				return 0, false, ""
			}
			return f.imagesMissingAlt, true, fmt.Sprintf("%d images missing alt text", f.imagesMissingAlt)
		},
	},
	{
		kind:     types.IssueMissingHeadings,
		severity: types.SeverityHigh,
		penalty:  20,
		apply:    func(s *Scores, p int) { s.Structure = clampScore(s.Structure - p) },
		evaluate: func(f pageFacts) (int, bool, string) {
			if f.headings > 0 {
				return 0, false, ""
			}
			return 0, true, "No heading structure found"
		},
	},
	{
		kind:     types.IssueEmptyLinkText,
		severity: types.SeverityMedium,
		penalty:  10,
		apply:    func(s *Scores, p int) { s.Navigation = clampScore(s.Navigation - p) },
		evaluate: func(f pageFacts) (int, bool, string) {
			if f.anchorsEmptyText == 0 {
				return 0, false, ""
			}
			return f.anchorsEmptyText, true, fmt.Sprintf("%d links without discernible text", f.anchorsEmptyText)
		},
	},
	{
		kind:     types.IssueMissingFormLabels,
		severity: types.SeverityMedium,
		penalty:  15,
		apply:    func(s *Scores, p int) { s.Navigation = clampScore(s.Navigation - p) },
		evaluate: func(f pageFacts) (int, bool, string) {
			if f.inputsMissingLab == 0 {
				return 0, false, ""
			}
			return f.inputsMissingLab, true, fmt.Sprintf("%d form inputs without labels", f.inputsMissingLab)
		},
	},
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Analyze inspects static markup and returns the typed issues plus the four
// sub-scores. Deterministic: the same markup always produces the same
// output. Malformed HTML is tolerated the way browsers tolerate it.
func Analyze(markup []byte) ([]types.Issue, Scores) {
	root, err := html.Parse(bytes.NewReader(markup))
	facts := pageFacts{}
	if err == nil {
		collectFacts(root, &facts, false, collectLabelTargets(root))
	}

	scores := Scores{
		Contrast:   baselineContrast,
		Structure:  baselineStructure,
		Navigation: baselineNavigation,
		Content:    baselineContent,
	}

	issues := make([]types.Issue, 0, len(detectionRules))
	for _, rule := range detectionRules {
		count, fired, description := rule.evaluate(facts)
		if !fired {
			continue
		}
		issues = append(issues, types.Issue{
			Kind:         rule.kind,
			Severity:     rule.severity,
			Description:  description,
			ElementCount: count,
		})
		rule.apply(&scores, rule.penalty)
	}
	return issues, scores
}

// collectLabelTargets gathers the ids referenced by <label for="..."> so the
// form-label rule can match explicit associations.
func collectLabelTargets(root *html.Node) map[string]bool {
	targets := map[string]bool{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "label" {
			if forID := attrValue(n, "for"); forID != "" {
				targets[forID] = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return targets
}

func collectFacts(n *html.Node, facts *pageFacts, inLabel bool, labelTargets map[string]bool) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "img":
			if !hasAttr(n, "alt") {
				facts.imagesMissingAlt++
			}
		case "h1", "h2", "h3", "h4", "h5", "h6":
			facts.headings++
		case "a":
			if strings.TrimSpace(nodeText(n)) == "" && attrValue(n, "aria-label") == "" && !hasImgWithAlt(n) {
				facts.anchorsEmptyText++
			}
		case "input":
			inputType := strings.ToLower(attrValue(n, "type"))
			switch inputType {
			case "hidden", "submit", "button", "reset":
			default:
				labelled := inLabel ||
					attrValue(n, "aria-label") != "" ||
					attrValue(n, "aria-labelledby") != "" ||
					labelTargets[attrValue(n, "id")]
				if !labelled {
					facts.inputsMissingLab++
				}
			}
		case "label":
			inLabel = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectFacts(c, facts, inLabel, labelTargets)
	}
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// hasImgWithAlt reports whether an anchor wraps an image that carries alt
// text, which counts as discernible link text.
func hasImgWithAlt(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "img" && attrValue(c, "alt") != "" {
			return true
		}
		if hasImgWithAlt(c) {
			return true
		}
	}
	return false
}
