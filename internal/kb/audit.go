package kb

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// AuditConfig describes the content rules a knowledge base is expected to meet.
type AuditConfig struct {
	// RequiredFiles are corpus-relative paths that must exist.
	RequiredFiles []string
	// MustHaveHeadings are literal heading lines every required file should contain.
	MustHaveHeadings []string
	// MinChars is the minimum content length (in runes) per file.
	MinChars int
}

// AuditIssue describes a problem found in one knowledge-base file.
type AuditIssue struct {
	FilePath        string
	Missing         bool
	TooShort        bool
	MissingHeadings []string
}

// Any reports whether the issue carries at least one problem.
func (i AuditIssue) Any() bool {
	return i.Missing || i.TooShort || len(i.MissingHeadings) > 0
}

// Audit checks the corpus against the given content rules. It never fails on
// file problems; every finding is returned as an issue so operators can fix
// the KB content without the service going down.
func Audit(root string, cfg AuditConfig) []AuditIssue {
	var issues []AuditIssue

	for _, rel := range cfg.RequiredFiles {
		path := filepath.Join(root, filepath.FromSlash(rel))
		content, err := os.ReadFile(path)
		if err != nil {
			issues = append(issues, AuditIssue{FilePath: rel, Missing: true})
			continue
		}

		text := string(content)
		issue := AuditIssue{FilePath: rel}

		if utf8.RuneCountInString(strings.TrimSpace(text)) < cfg.MinChars {
			issue.TooShort = true
		}
		for _, heading := range cfg.MustHaveHeadings {
			if !strings.Contains(text, heading) {
				issue.MissingHeadings = append(issue.MissingHeadings, heading)
			}
		}

		if issue.Any() {
			issues = append(issues, issue)
		}
	}

	return issues
}
