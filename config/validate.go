package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGatherer(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Paths.DebugDir == c.Paths.XMLDir {
		return errors.New("paths.debug_dir must differ from paths.xml_dir")
	}
	if c.Run.DebugLimit < 1 {
		return errors.New("run.debug_limit must be at least 1")
	}
	return nil
}

func (c *Config) validateGatherer() error {
	u, err := url.Parse(c.Gatherer.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("gatherer.base_url must be an http(s) URL, got %q", c.Gatherer.BaseURL)
	}
	if c.Gatherer.RequestInterval < 0 {
		return errors.New("gatherer.request_interval_ms must not be negative")
	}
	if c.Gatherer.Timeout < 0 {
		return errors.New("gatherer.timeout_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case CatalogStatic, CatalogScryfall:
		return nil
	default:
		return fmt.Errorf("catalog.source must be %q or %q, got %q", CatalogStatic, CatalogScryfall, c.Catalog.Source)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn or error, got %q", c.Logging.Level)
	}
}
