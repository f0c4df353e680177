package config

const (
	defaultConfigPath      = "~/.config/mtg-setxml/config.toml"
	projectConfigFile      = "mtg-setxml.toml"
	defaultIDsDir          = "ids"
	defaultHTMLDir         = "html"
	defaultXMLDir          = "xml"
	defaultDebugDir        = "xml-debug"
	defaultGathererBaseURL = "https://gatherer.wizards.com"
	defaultRequestInterval = 500
	defaultUserAgent       = "mtg-setxml (+https://github.com/jeandeaual/mtg-setxml)"
	defaultTimeout         = 30
	defaultLogLevel        = "info"
	defaultDebugLimit      = 3
)

// Catalog sources.
const (
	CatalogStatic   = "static"
	CatalogScryfall = "scryfall"
)

// Default returns a Config populated with the defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IDsDir:   defaultIDsDir,
			HTMLDir:  defaultHTMLDir,
			XMLDir:   defaultXMLDir,
			DebugDir: defaultDebugDir,
		},
		Gatherer: Gatherer{
			BaseURL:         defaultGathererBaseURL,
			RequestInterval: defaultRequestInterval,
			UserAgent:       defaultUserAgent,
			Timeout:         defaultTimeout,
		},
		Catalog: Catalog{
			Source: CatalogStatic,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
		Run: Run{
			DebugLimit: defaultDebugLimit,
		},
	}
}
