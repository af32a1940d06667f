package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lukemcguire/reflink/urlutil"
)

// Family names a reference family.
type Family string

const (
	FamilyIssueURL Family = "issue-url"
	FamilyIssue    Family = "issue"
	FamilyCommit   Family = "commit"
	FamilyHandle   Family = "handle"
)

// passOrder is the fixed order in which families are rewritten. Handles run
// last so they only ever see issue and commit output in its linked form.
var passOrder = []Family{FamilyIssueURL, FamilyIssue, FamilyCommit, FamilyHandle}

// DefaultFamilies are rewritten when no family list is configured. Bare
// issue URL canonicalization is opt-in.
var DefaultFamilies = []Family{FamilyIssue, FamilyCommit, FamilyHandle}

// Boundary selects the rule for the character before an issue "#".
type Boundary string

const (
	// BoundaryStrict requires start of text or a character that is neither a
	// letter nor a digit in any script before "#", so "abc#12" and "café#12"
	// are not references.
	BoundaryStrict Boundary = "strict"
	// BoundaryLoose accepts any preceding character except the ones that
	// mark linked or URL context.
	BoundaryLoose Boundary = "loose"
)

// Every leading class excludes "[" and "/" so that "[#42](.../issues/42)"
// never matches again. Commit and handle classes also exclude "=", "?" and
// "&" so query parameters are left alone.
var expressions = map[Family]map[Boundary]string{
	// Bare issue URLs outside link syntax; Find keeps only the configured repo.
	FamilyIssueURL: {
		BoundaryStrict: `(?:^|[^\p{L}\p{N}_\[/(<"'=])((?i:https?)://[^\s()<>\[\]"']+?/issues/([0-9]+))\b`,
	},
	FamilyIssue: {
		BoundaryStrict: `(?:^|[^\p{L}\p{N}_\[/&#])(#([0-9]+))\b`,
		BoundaryLoose:  `(?:^|[^\[/&#])(#([0-9]+))\b`,
	},
	FamilyCommit: {
		BoundaryStrict: `(?:^|[^\p{L}\p{N}_\[/#@.=?&-])(([0-9A-Fa-f]{40}|[0-9A-Fa-f]{6,8}))\b`,
	},
	FamilyHandle: {
		BoundaryStrict: `(?:^|[^\p{L}\p{N}_\[/@.=?&])(@([A-Za-z0-9_-]+))`,
	},
}

// Target holds the URL bases candidates are derived from.
type Target struct {
	Host     string // e.g. https://github.com
	RepoBase string // e.g. https://github.com/acme/widget; empty without a repo
}

// Pattern matches one reference family. Patterns are immutable once built.
type Pattern struct {
	family        Family
	re            *regexp.Regexp
	plausibleOnly bool
}

// Family returns the reference family the pattern matches.
func (p *Pattern) Family() Family {
	return p.family
}

// NeedsRepo reports whether candidate URLs require a repository base.
func (p *Pattern) NeedsRepo() bool {
	return p.family != FamilyHandle
}

// Candidate is a matched reference and the URL derived from it.
type Candidate struct {
	Family Family
	Start  int    // Byte offset of Text in the pass text
	End    int    // Exclusive end offset
	Text   string // Display text, e.g. "#42" or "@octocat"
	Ident  string // Identifier without sigil, e.g. "42" or "octocat"
	URL    string // Candidate URL to resolve
}

// Replacement returns the text substituted for the candidate once it has
// resolved. Bare URLs become their canonical form; everything else becomes a
// markdown link labelled with the original text.
func (c Candidate) Replacement(canonicalURL string) string {
	if c.Family == FamilyIssueURL {
		return canonicalURL
	}
	return "[" + c.Text + "](" + canonicalURL + ")"
}

// Find returns candidates in text, left to right, skipping any that overlap
// a protected range.
func (p *Pattern) Find(text string, target Target, protected []Range) []Candidate {
	var out []Candidate
	for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		ident := text[m[4]:m[5]]
		if overlapsAny(protected, start, end) {
			continue
		}
		if p.family == FamilyCommit && p.plausibleOnly && !plausibleSHA(ident) {
			continue
		}
		if p.family == FamilyIssueURL && !inRepo(text[start:end-len(ident)], target.RepoBase) {
			continue
		}
		out = append(out, Candidate{
			Family: p.family,
			Start:  start,
			End:    end,
			Text:   text[start:end],
			Ident:  ident,
			URL:    p.urlFor(target, ident),
		})
	}
	return out
}

func (p *Pattern) urlFor(target Target, ident string) string {
	switch p.family {
	case FamilyIssueURL, FamilyIssue:
		return urlutil.IssueURL(target.RepoBase, ident)
	case FamilyCommit:
		return urlutil.CommitURL(target.RepoBase, strings.ToLower(ident))
	default:
		return urlutil.HandleURL(target.Host, ident)
	}
}

// plausibleSHA rejects short tokens made only of digits or only of letters,
// such as "1234567" or "decade". Full 40-character hashes always pass.
func plausibleSHA(token string) bool {
	if len(token) == 40 {
		return true
	}
	return strings.ContainsAny(token, "0123456789") && strings.ContainsAny(token, "abcdefABCDEF")
}

// inRepo reports whether prefix is "{repoBase}/issues/"; the host compares
// case-insensitively.
func inRepo(prefix, repoBase string) bool {
	if repoBase == "" {
		return false
	}
	want := repoBase + "/issues/"
	if len(prefix) != len(want) {
		return false
	}
	scheme := strings.Index(want, "://") + 3
	hostEnd := strings.IndexByte(want[scheme:], '/') + scheme
	return strings.EqualFold(prefix[:hostEnd], want[:hostEnd]) && prefix[hostEnd:] == want[hostEnd:]
}

// MatchOptions selects which references the patterns match.
type MatchOptions struct {
	Boundary Boundary // Default BoundaryStrict
	Families []Family // Empty means DefaultFamilies
	// CommitHeuristic skips short commit tokens without both a digit and a
	// letter instead of leaving them to the existence check.
	CommitHeuristic bool
}

// NewPatterns compiles the patterns for the selected families in pass order.
func NewPatterns(opts MatchOptions) ([]*Pattern, error) {
	boundary, families := opts.Boundary, opts.Families
	if boundary == "" {
		boundary = BoundaryStrict
	}
	if boundary != BoundaryStrict && boundary != BoundaryLoose {
		return nil, fmt.Errorf("unknown issue boundary %q (want %q or %q)", boundary, BoundaryStrict, BoundaryLoose)
	}

	if len(families) == 0 {
		families = DefaultFamilies
	}
	wanted := make(map[Family]bool, len(families))
	for _, f := range families {
		if _, ok := expressions[f]; !ok {
			return nil, fmt.Errorf("unknown reference family %q", f)
		}
		wanted[f] = true
	}

	var patterns []*Pattern
	for _, family := range passOrder {
		if !wanted[family] {
			continue
		}
		expr, ok := expressions[family][boundary]
		if !ok {
			expr = expressions[family][BoundaryStrict]
		}
		patterns = append(patterns, &Pattern{
			family:        family,
			re:            regexp.MustCompile(expr),
			plausibleOnly: opts.CommitHeuristic,
		})
	}
	return patterns, nil
}

// ParseFamilies converts family names such as "issue,handle".
func ParseFamilies(names []string) ([]Family, error) {
	var out []Family
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		f := Family(name)
		if _, ok := expressions[f]; !ok {
			return nil, fmt.Errorf("unknown reference family %q (want issue-url, issue, commit or handle)", name)
		}
		out = append(out, f)
	}
	return out, nil
}
