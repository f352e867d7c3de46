// Package fingerprint computes content fingerprints of GitBook pages.
//
// A fingerprint covers the canonicalized frontmatter and the markdown body, so
// re-ordering frontmatter keys or re-saving a page unchanged does not count as
// an edit. Incremental conversion compares fingerprints against the build journal.
package fingerprint

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/frontmatter"
	"github.com/inful/mdfp"
)

// Page returns the fingerprint of a page's raw content. A fingerprint field
// already present in the frontmatter is excluded from the hash.
func Page(content []byte) (string, error) {
	fm, body, had, err := frontmatter.Split(content)
	if err != nil {
		return "", err
	}
	if !had {
		return mdfp.CalculateFingerprintFromParts("", string(body)), nil
	}

	fields, err := frontmatter.Parse(fm)
	if err != nil {
		return "", fmt.Errorf("parse frontmatter: %w", err)
	}
	delete(fields, mdfp.FingerprintField)

	canonical, err := frontmatter.Canonical(fields)
	if err != nil {
		return "", fmt.Errorf("canonicalize frontmatter: %w", err)
	}
	return mdfp.CalculateFingerprintFromParts(canonical, string(body)), nil
}

// File reads path and returns its page fingerprint.
func File(path string) (string, error) {
	// #nosec G304 -- path comes from walking the configured docs tree
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Page(content)
}
