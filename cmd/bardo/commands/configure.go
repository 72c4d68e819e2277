package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bardo/internal/config"
	"bardo/internal/images"
)

var (
	configureSets           []string
	configureYes            bool
	configurePrint          bool
	configureNonInteractive bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Create or edit the configuration file interactively or via flags",
	Long: `Interactively create or edit the Bardo configuration file (config.yaml by default,
or $BARDO_CONFIG).

Features:
- Interactive prompts for the Confluence, Client, and Images sections
- Apply key=value overrides via --set
- Non-interactive scripting with --non-interactive --yes --set ...
- Print resulting YAML with --print instead of writing
`,
	Example: `  bardo configure
  bardo configure --non-interactive --set confluence.base_url=https://example.atlassian.net/wiki \
    --set confluence.username=me@example.com --set confluence.api_token=$TOKEN`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().StringArrayVar(&configureSets, "set", nil, "Set a config field using dotted path (e.g. confluence.base_url=https://example)")
	configureCmd.Flags().BoolVar(&configureYes, "yes", false, "Automatically confirm saving changes")
	configureCmd.Flags().BoolVar(&configurePrint, "print", false, "Print resulting YAML instead of writing to file")
	configureCmd.Flags().BoolVar(&configureNonInteractive, "non-interactive", false, "Disable interactive prompts (use with --set)")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	path := config.ResolveConfigPath(configFile)
	cfg, existed, err := loadOrInitConfig(path)
	if err != nil {
		return err
	}

	if err := applySetOperations(cfg, configureSets); err != nil {
		return err
	}

	interactive := !configureNonInteractive
	if interactive {
		if err := interactiveEdit(cmd, cfg, existed); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if configurePrint {
		outYAML, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		cmd.Print(string(outYAML))
		return nil
	}

	if !configureYes && interactive {
		confirm := false
		prompt := &survey.Confirm{Message: "Save configuration to " + path + "?", Default: true}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return err
		}
		if !confirm {
			cmd.Println("Aborted (no changes saved).")
			return nil
		}
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	cmd.Printf("Configuration saved to %s\n", path)
	return nil
}

// loadOrInitConfig reads path without validation so an incomplete file can
// be repaired. The bool reports whether the file existed.
func loadOrInitConfig(path string) (*config.Config, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &config.Config{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read config: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, true, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, true, nil
}

func applySetOperations(cfg *config.Config, sets []string) error {
	for _, s := range sets {
		key, val, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("invalid --set value '%s' (expected key=value)", s)
		}
		if err := setField(cfg, key, val); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

func setField(cfg *config.Config, key, value string) error {
	switch key {
	case "confluence.base_url":
		cfg.Confluence.BaseURL = value
	case "confluence.username":
		cfg.Confluence.Username = value
	case "confluence.api_token":
		cfg.Confluence.APIToken = value
	case "confluence.space_key":
		cfg.Confluence.SpaceKey = value
	case "confluence.parent_page":
		cfg.Confluence.ParentPage = value
	case "client.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		cfg.Client.Timeout = d
	case "client.user_agent":
		cfg.Client.UserAgent = value
	case "client.rate_limit.rps":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Client.RateLimit.RPS = n
	case "client.rate_limit.burst":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Client.RateLimit.Burst = n
	case "local.markdown_dir":
		cfg.Local.MarkdownDir = value
	case "local.exclude":
		cfg.Local.Exclude = splitList(value)
	case "images.supported_formats":
		cfg.Images.SupportedFormats = splitList(value)
	case "images.max_file_size":
		m, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Images.MaxFileSize = m
	default:
		return fmt.Errorf("unsupported key '%s'", key)
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Interactive editing -------------------------------------------------------

func interactiveEdit(cmd *cobra.Command, cfg *config.Config, existed bool) error {
	cmd.Println("Interactive configuration editor. Press Enter to accept defaults.")
	if existed {
		cmd.Println("Loaded existing configuration. You can modify sections.")
	}

	if err := promptConfluence(cfg); err != nil {
		return err
	}
	if err := promptClient(cfg); err != nil {
		return err
	}
	return promptImages(cfg)
}

func promptConfluence(cfg *config.Config) error {
	qs := []*survey.Question{
		{Name: "base_url", Prompt: &survey.Input{Message: "Confluence Base URL", Default: cfg.Confluence.BaseURL}, Validate: survey.Required},
		{Name: "username", Prompt: &survey.Input{Message: "Confluence Username", Default: cfg.Confluence.Username}, Validate: survey.Required},
		{Name: "api_token", Prompt: &survey.Password{Message: "Confluence API Token (leave blank to keep)"}},
		{Name: "space_key", Prompt: &survey.Input{Message: "Default Space Key (optional)", Default: cfg.Confluence.SpaceKey}},
		{Name: "parent_page", Prompt: &survey.Input{Message: "Default Parent Page (optional)", Default: cfg.Confluence.ParentPage}},
	}
	answers := struct {
		BaseURL    string `survey:"base_url"`
		Username   string `survey:"username"`
		APIToken   string `survey:"api_token"`
		SpaceKey   string `survey:"space_key"`
		ParentPage string `survey:"parent_page"`
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}
	cfg.Confluence.BaseURL = answers.BaseURL
	cfg.Confluence.Username = answers.Username
	if answers.APIToken != "" { // keep existing if blank
		cfg.Confluence.APIToken = answers.APIToken
	}
	cfg.Confluence.SpaceKey = answers.SpaceKey
	cfg.Confluence.ParentPage = answers.ParentPage
	return nil
}

func promptClient(cfg *config.Config) error {
	var edit bool
	if err := survey.AskOne(&survey.Confirm{Message: "Edit HTTP client settings?", Default: false}, &edit); err != nil {
		return err
	}
	if !edit {
		return nil
	}

	timeout := ""
	if cfg.Client.Timeout > 0 {
		timeout = cfg.Client.Timeout.String()
	}
	qs := []*survey.Question{
		{Name: "timeout", Prompt: &survey.Input{Message: "Request Timeout (e.g. 30s, blank for none)", Default: timeout}},
		{Name: "user_agent", Prompt: &survey.Input{Message: "User-Agent (blank for default)", Default: cfg.Client.UserAgent}},
		{Name: "rps", Prompt: &survey.Input{Message: "Requests per second (0 for unlimited)", Default: strconv.Itoa(cfg.Client.RateLimit.RPS)}},
		{Name: "burst", Prompt: &survey.Input{Message: "Burst", Default: intToStringOr(cfg.Client.RateLimit.Burst, 1)}},
	}
	answers := struct {
		Timeout   string `survey:"timeout"`
		UserAgent string `survey:"user_agent"`
		RPS       string `survey:"rps"`
		Burst     string `survey:"burst"`
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}

	cfg.Client.Timeout = 0
	if d, err := time.ParseDuration(answers.Timeout); err == nil {
		cfg.Client.Timeout = d
	}
	cfg.Client.UserAgent = answers.UserAgent
	if v, err := strconv.Atoi(answers.RPS); err == nil {
		cfg.Client.RateLimit.RPS = v
	}
	if v, err := strconv.Atoi(answers.Burst); err == nil {
		cfg.Client.RateLimit.Burst = v
	}
	if cfg.Client.RateLimit.RPS == 0 {
		cfg.Client.RateLimit.Burst = 0
	}
	return nil
}

func promptImages(cfg *config.Config) error {
	var edit bool
	if err := survey.AskOne(&survey.Confirm{Message: "Edit Image settings?", Default: false}, &edit); err != nil {
		return err
	}
	if !edit {
		return nil
	}
	formats := cfg.Images.SupportedFormats
	if len(formats) == 0 {
		formats = images.DefaultFormats
	}
	qs := []*survey.Question{
		{Name: "supported", Prompt: &survey.Input{Message: "Supported Formats (comma)", Default: strings.Join(formats, ",")}},
		{Name: "max_file_size", Prompt: &survey.Input{Message: "Max File Size (bytes)", Default: int64ToStringOr(cfg.Images.MaxFileSize, 10*1024*1024)}},
	}
	answers := struct {
		Supported   string `survey:"supported"`
		MaxFileSize string `survey:"max_file_size"`
	}{}
	if err := survey.Ask(qs, &answers); err != nil {
		return err
	}
	cfg.Images.SupportedFormats = splitList(answers.Supported)
	if v, err := strconv.ParseInt(answers.MaxFileSize, 10, 64); err == nil {
		cfg.Images.MaxFileSize = v
	}
	return nil
}

// Utility helpers -----------------------------------------------------------

func intToStringOr(v int, fallback int) string {
	if v == 0 {
		return strconv.Itoa(fallback)
	}
	return strconv.Itoa(v)
}

func int64ToStringOr(v int64, fallback int64) string {
	if v == 0 {
		return strconv.FormatInt(fallback, 10)
	}
	return strconv.FormatInt(v, 10)
}
