package config

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/gitbook2mkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/retry"
	"git.home.luguber.info/inful/gitbook2mkdocs/internal/translator"
)

// Validate checks a configuration after defaults have been applied.
func (c *Config) Validate() error {
	if err := validateAssetDir("assets.source", c.Assets.Source); err != nil {
		return err
	}
	if err := validateAssetDir("assets.alias", c.Assets.Alias); err != nil {
		return err
	}
	if filepath.Clean(c.Assets.Source) == filepath.Clean(c.Assets.Alias) {
		return errors.ValidationError("assets.source and assets.alias must differ").
			WithContext("value", c.Assets.Source).
			Build()
	}

	known := translator.Names()
	for _, name := range c.Translate.Skip {
		if !slices.Contains(known, name) {
			return errors.ValidationError("translate.skip names an unknown pass").
				WithContext("pass", name).
				WithContext("known", strings.Join(known, ", ")).
				Build()
		}
	}

	if c.Convert.Workers < 1 {
		return errors.ValidationError("convert.workers must be at least 1").Build()
	}
	if err := validatePositiveDuration("watch.debounce", c.Watch.Debounce); err != nil {
		return err
	}
	if c.Mirror.Enabled() {
		if err := validatePositiveDuration("mirror.interval", c.Mirror.Interval); err != nil {
			return err
		}
		if _, err := retry.ParseBackoffMode(c.Mirror.Retry.Backoff); err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "mirror.retry.backoff is not a backoff mode").
				WithContext("value", c.Mirror.Retry.Backoff).
				Build()
		}
		for field, value := range map[string]string{
			"mirror.retry.initial": c.Mirror.Retry.Initial,
			"mirror.retry.max":     c.Mirror.Retry.Max,
		} {
			if err := validatePositiveDuration(field, value); err != nil {
				return err
			}
		}
		if strings.Contains(filepath.ToSlash(c.Mirror.Subdir), "..") {
			return errors.ValidationError("mirror.subdir must stay inside the repository").
				WithContext("value", c.Mirror.Subdir).
				Build()
		}
	}
	return nil
}

// validateAssetDir accepts a relative directory that stays inside the docs root.
func validateAssetDir(field, dir string) error {
	clean := filepath.ToSlash(filepath.Clean(dir))
	switch {
	case dir == "" || clean == ".":
		return errors.ValidationError(field + " must name a directory").Build()
	case filepath.IsAbs(dir):
		return errors.ValidationError(field+" must be relative to the docs root").WithContext("value", dir).Build()
	case clean == ".." || strings.HasPrefix(clean, "../"):
		return errors.ValidationError(field+" must stay inside the docs root").WithContext("value", dir).Build()
	}
	return nil
}

func validatePositiveDuration(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, field+" is not a duration").
			WithContext("value", value).
			Fatal().
			Build()
	}
	if d <= 0 {
		return errors.ValidationError(field+" must be positive").WithContext("value", value).Build()
	}
	return nil
}
