package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	c.normalizeGatherer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.IDsDir) == "" {
		c.Paths.IDsDir = defaultIDsDir
	}
	if strings.TrimSpace(c.Paths.HTMLDir) == "" {
		c.Paths.HTMLDir = defaultHTMLDir
	}
	if strings.TrimSpace(c.Paths.XMLDir) == "" {
		c.Paths.XMLDir = defaultXMLDir
	}
	if strings.TrimSpace(c.Paths.DebugDir) == "" {
		c.Paths.DebugDir = defaultDebugDir
	}

	var err error
	if c.Paths.IDsDir, err = expandPath(c.Paths.IDsDir); err != nil {
		return fmt.Errorf("paths.ids_dir: %w", err)
	}
	if c.Paths.HTMLDir, err = expandPath(c.Paths.HTMLDir); err != nil {
		return fmt.Errorf("paths.html_dir: %w", err)
	}
	if c.Paths.XMLDir, err = expandPath(c.Paths.XMLDir); err != nil {
		return fmt.Errorf("paths.xml_dir: %w", err)
	}
	if c.Paths.DebugDir, err = expandPath(c.Paths.DebugDir); err != nil {
		return fmt.Errorf("paths.debug_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	c.Catalog.Source = strings.ToLower(strings.TrimSpace(c.Catalog.Source))
	if c.Catalog.Source == "" {
		c.Catalog.Source = CatalogStatic
	}

	var err error
	if c.Catalog.SetsFile, err = expandPath(strings.TrimSpace(c.Catalog.SetsFile)); err != nil {
		return fmt.Errorf("catalog.sets_file: %w", err)
	}
	if c.Catalog.SpecialFile, err = expandPath(strings.TrimSpace(c.Catalog.SpecialFile)); err != nil {
		return fmt.Errorf("catalog.special_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeGatherer() {
	c.Gatherer.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Gatherer.BaseURL), "/")
	if c.Gatherer.BaseURL == "" {
		c.Gatherer.BaseURL = defaultGathererBaseURL
	}
	c.Gatherer.UserAgent = strings.TrimSpace(c.Gatherer.UserAgent)
	if c.Gatherer.UserAgent == "" {
		c.Gatherer.UserAgent = defaultUserAgent
	}
	if c.Gatherer.Timeout == 0 {
		c.Gatherer.Timeout = defaultTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
