package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidRepo is returned by ParseRepo for identifiers that are not of the
// form "owner/name".
var ErrInvalidRepo = errors.New("repository must be of the form owner/name")

var repoSegment = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Repo identifies a repository on a forge host.
type Repo struct {
	Owner string
	Name  string
}

// ParseRepo parses an "owner/name" identifier. Surrounding whitespace and a
// trailing slash are trimmed.
func ParseRepo(raw string) (Repo, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "/")
	owner, name, ok := strings.Cut(trimmed, "/")
	if !ok || !repoSegment.MatchString(owner) || !repoSegment.MatchString(name) {
		return Repo{}, fmt.Errorf("parse repo %q: %w", raw, ErrInvalidRepo)
	}
	return Repo{Owner: owner, Name: name}, nil
}

// String returns the "owner/name" form.
func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// IsZero reports whether no repository is set.
func (r Repo) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// RepoBaseURL returns "{host}/{owner}/{name}".
func RepoBaseURL(host string, repo Repo) string {
	return joinPath(host, repo.Owner, repo.Name)
}

// IssueURL returns "{repoBase}/issues/{number}". The forge redirects pull
// request numbers to their /pull/ page, which becomes the canonical URL.
func IssueURL(repoBase, number string) string {
	return joinPath(repoBase, "issues", number)
}

// CommitURL returns "{repoBase}/commit/{sha}".
func CommitURL(repoBase, sha string) string {
	return joinPath(repoBase, "commit", sha)
}

// HandleURL returns "{host}/{handle}".
func HandleURL(host, handle string) string {
	return joinPath(host, handle)
}

func joinPath(base string, elems ...string) string {
	escaped := make([]string, len(elems))
	for i, elem := range elems {
		escaped[i] = url.PathEscape(elem)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(escaped, "/")
}
