// Package git keeps a local mirror of a GitBook-synced repository up to date.
//
// The mirror is read-only: updates fetch the tracked branch and hard-reset the
// worktree to it, so local edits never block a sync.
package git
