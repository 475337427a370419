// Package github resolves GitHub repository links and downloads branch
// archives.
package github

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultBranch is used when neither the link nor the caller names a branch.
const DefaultBranch = "main"

// RepoRef identifies one branch of a GitHub repository.
type RepoRef struct {
	Owner  string
	Repo   string
	Branch string
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Repo + "@" + r.Branch
}

// ArchiveName is the local file name used for the branch archive.
func (r RepoRef) ArchiveName() string {
	return fmt.Sprintf("%s_%s_%s.zip", r.Owner, r.Repo, r.Branch)
}

// ValidationError reports a link that cannot be resolved to a repository.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

var sshPattern = regexp.MustCompile(`^git@github\.com:([^/]+)/([^.]+)(?:\.git)?$`)

// ParseRepo resolves a pasted HTTPS or SSH repository link. A blank branch
// falls back to DefaultBranch; a /tree/<branch> segment in the link wins over
// the branch argument.
func ParseRepo(link, branch string) (RepoRef, error) {
	link = strings.TrimSpace(link)
	branch = strings.TrimSpace(branch)
	if branch == "" {
		branch = DefaultBranch
	}

	if m := sshPattern.FindStringSubmatch(link); m != nil {
		return RepoRef{Owner: m[1], Repo: m[2], Branch: branch}, nil
	}

	u, err := url.Parse(link)
	if err != nil {
		return RepoRef{}, &ValidationError{Input: link, Reason: "that does not look like a github.com link"}
	}
	host := strings.ToLower(u.Host)
	if host != "github.com" && host != "www.github.com" {
		return RepoRef{}, &ValidationError{Input: link, Reason: "that does not look like a github.com link"}
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return RepoRef{}, &ValidationError{
			Input:  link,
			Reason: "paste a GitHub repo link like https://github.com/OWNER/REPO",
		}
	}

	ref := RepoRef{
		Owner:  parts[0],
		Repo:   strings.TrimSuffix(parts[1], ".git"),
		Branch: branch,
	}
	if len(parts) >= 4 && parts[2] == "tree" {
		ref.Branch = parts[3]
	}
	return ref, nil
}

// ZipURL returns the public archive URL for ref.
func ZipURL(ref RepoRef) string {
	return zipURL(defaultBaseURL, ref)
}

func zipURL(base string, ref RepoRef) string {
	return fmt.Sprintf("%s/%s/%s/archive/refs/heads/%s.zip",
		strings.TrimRight(base, "/"), ref.Owner, ref.Repo, ref.Branch)
}
