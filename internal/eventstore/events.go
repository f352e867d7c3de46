package eventstore

import (
	"encoding/json"
	"time"
)

// PreBuild is recorded after the pre-build hook.
type PreBuild struct {
	DocsDir      string `json:"docs_dir"`
	AliasCreated bool   `json:"alias_created"`
}

// PageTranslated is recorded for each translated page.
type PageTranslated struct {
	Page        string         `json:"page"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Output      string         `json:"output,omitempty"`
	Rewrites    map[string]int `json:"rewrites,omitempty"`
}

// PageSkipped is recorded when incremental conversion keeps an existing output.
type PageSkipped struct {
	Page        string `json:"page"`
	Fingerprint string `json:"fingerprint"`
	Output      string `json:"output,omitempty"`
}

// PostBuild is recorded after the post-build hook.
type PostBuild struct {
	SiteDir         string `json:"site_dir"`
	AssetsPublished bool   `json:"assets_published"`
	AliasRemoved    bool   `json:"alias_removed"`
	Pages           int    `json:"pages"`
	DurationMS      int64  `json:"duration_ms"`
}

// NewPreBuild creates a pre_build event.
func NewPreBuild(buildID string, p PreBuild) (Event, error) {
	return newEvent(buildID, TypePreBuild, "", p)
}

// NewPageTranslated creates a page_translated event.
func NewPageTranslated(buildID string, p PageTranslated) (Event, error) {
	return newEvent(buildID, TypePageTranslated, pageSubject(p.Page, p.Output), p)
}

// NewPageSkipped creates a page_skipped event.
func NewPageSkipped(buildID string, p PageSkipped) (Event, error) {
	return newEvent(buildID, TypePageSkipped, pageSubject(p.Page, p.Output), p)
}

// pageSubject keys page events by output path, falling back to the page path
// when no output is known.
func pageSubject(page, output string) string {
	if output != "" {
		return output
	}
	return page
}

// NewPostBuild creates a post_build event.
func NewPostBuild(buildID string, p PostBuild) (Event, error) {
	return newEvent(buildID, TypePostBuild, "", p)
}

func newEvent(buildID string, typ EventType, subject string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, wrap(ErrMarshalPayloadFailed, err).
			WithContext("build_id", buildID).
			WithContext("event_type", string(typ)).
			Build()
	}
	return Event{
		BuildID:   buildID,
		Type:      typ,
		Subject:   subject,
		Timestamp: time.Now(),
		Payload:   data,
	}, nil
}
