package commands

import (
	"strings"

	"bardo/internal/config"
	"bardo/internal/confluence"
	api "bardo/pkg/confluence"
	"bardo/pkg/logger"
)

// newConfluenceClient is a package-level variable to allow test injection of a mock.
// Production code uses the real client constructor; tests can override this.
var newConfluenceClient = func(cfg *config.Config, log *logger.Logger) (confluence.ConfluenceClient, error) {
	return confluence.NewClient(cfg.Confluence.BaseURL, cfg.Confluence.Username, cfg.Confluence.APIToken, log, clientOptions(cfg)...)
}

// newAPIClient builds the raw request-builder client used by the api command.
var newAPIClient = func(cfg *config.Config, log *logger.Logger) (*api.Client, error) {
	opts := append([]api.Option{
		api.WithBasicAuth(cfg.Confluence.Username, cfg.Confluence.APIToken),
		api.WithLogger(log),
	}, clientOptions(cfg)...)
	return api.New(strings.TrimSuffix(cfg.Confluence.BaseURL, "/")+"/rest/api", opts...)
}

// clientOptions maps the client section of the config onto client options.
func clientOptions(cfg *config.Config) []api.Option {
	var opts []api.Option
	if cfg.Client.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.Client.Timeout))
	}
	if cfg.Client.RateLimit.RPS > 0 {
		opts = append(opts, api.WithThrottle(cfg.Client.RateLimit.RPS, cfg.Client.RateLimit.Burst))
	}
	if cfg.Client.UserAgent != "" {
		opts = append(opts, api.WithUserAgent(cfg.Client.UserAgent))
	}
	return opts
}
