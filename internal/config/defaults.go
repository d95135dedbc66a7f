package config

const (
	defaultBibliographyDir       = "bibliography"
	defaultDataDir               = "~/.local/share/bibsync"
	defaultZoteroBaseURL         = "https://api.zotero.org"
	defaultRequestTimeoutSeconds = 10
	defaultConnectTimeoutSeconds = 60
	defaultRetryAttempts         = 3
	defaultRequestsPerSecond     = 5
	defaultLogLevel              = "info"
	defaultLogFormat             = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BibliographyDir: defaultBibliographyDir,
			DataDir:         defaultDataDir,
		},
		Zotero: Zotero{
			BaseURL:               defaultZoteroBaseURL,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			ConnectTimeoutSeconds: defaultConnectTimeoutSeconds,
			RetryAttempts:         defaultRetryAttempts,
			RequestsPerSecond:     defaultRequestsPerSecond,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
