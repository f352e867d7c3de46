// Package workspace manages scratch and persistent working directories.
//
// Ephemeral workspaces (gitbook2mkdocs-*) hold throwaway conversions such as
// the output of a check run and are removed by Cleanup. Persistent workspaces
// live at a fixed path, survive Cleanup and keep the mirror clone between
// syncs.
package workspace
