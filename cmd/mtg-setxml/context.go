package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	setxml "github.com/jeandeaual/mtg-setxml"
	"github.com/jeandeaual/mtg-setxml/config"
	"github.com/jeandeaual/mtg-setxml/gatherer"
	"github.com/jeandeaual/mtg-setxml/log"
	"github.com/jeandeaual/mtg-setxml/setdoc"
	"github.com/jeandeaual/mtg-setxml/sets"
)

type commandContext struct {
	configFlag *string
	debugFlag  *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger *zap.Logger
}

func newCommandContext(configFlag *string, debugFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		debugFlag:  debugFlag,
	}
}

func (c *commandContext) debug() bool {
	return c.debugFlag != nil && *c.debugFlag
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}

		logger, err := newLogger(c.debug(), cfg.Logging.Level)
		if err != nil {
			c.configErr = fmt.Errorf("couldn't create logger: %w", err)
			return
		}
		log.SetLogger(logger.Sugar())
		c.logger = logger

		if exists {
			log.Debugf("Loaded configuration from %s", resolved)
		} else {
			log.Debug("No configuration file found, using the defaults")
		}

		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) syncLogger() {
	if c.logger != nil {
		// Sync errors on stderr/stdout are expected on some platforms
		_ = c.logger.Sync()
	}
}

// app holds the components of a generation run.
type app struct {
	catalog  sets.Catalog
	fetcher  *gatherer.Fetcher
	store    *setdoc.Store
	scanner  *setdoc.Scanner
	pipeline *setxml.Pipeline
}

func (a *app) Close() {
	a.fetcher.Close()
}

func newCatalog(cfg *config.Config) (sets.Catalog, error) {
	var (
		static *sets.StaticCatalog
		err    error
	)

	if len(cfg.Catalog.SetsFile) > 0 {
		static, err = sets.LoadCatalog(cfg.Catalog.SetsFile)
	} else {
		static, err = sets.DefaultCatalog()
	}
	if err != nil {
		return nil, err
	}

	if !cfg.UseScryfall() {
		return static, nil
	}

	catalog, err := sets.NewScryfallCatalog(static)
	if err != nil {
		return nil, err
	}
	return catalog, nil
}

func newSpecial(cfg *config.Config) (*sets.Special, error) {
	if len(cfg.Catalog.SpecialFile) > 0 {
		return sets.LoadSpecial(cfg.Catalog.SpecialFile)
	}
	return sets.DefaultSpecial()
}

func (c *commandContext) newApp() (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	catalog, err := newCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't load the set catalog: %w", err)
	}

	special, err := newSpecial(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't load the special card tables: %w", err)
	}

	fetcher := gatherer.NewFetcher(gatherer.Options{
		BaseURL:   cfg.Gatherer.BaseURL,
		IDsDir:    cfg.Paths.IDsDir,
		CacheDir:  cfg.Paths.HTMLDir,
		UserAgent: cfg.Gatherer.UserAgent,
		Interval:  cfg.RequestInterval(),
		Timeout:   cfg.RequestTimeout(),
	})
	store := setdoc.NewStore(cfg.Paths.XMLDir)
	scanner := setdoc.NewScanner(store)

	options := setxml.Options{Special: special}
	if c.debug() {
		options.DebugLimit = cfg.Run.DebugLimit
		options.DebugStore = setdoc.NewStore(cfg.Paths.DebugDir)
	}

	return &app{
		catalog:  catalog,
		fetcher:  fetcher,
		store:    store,
		scanner:  scanner,
		pipeline: setxml.NewPipeline(fetcher, gatherer.NewExtractor(), catalog, store, scanner, options),
	}, nil
}

// withApp runs fn with the components of a generation run.
func (c *commandContext) withApp(fn func(*app) error) error {
	a, err := c.newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
