package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tumdlr/pkg/config"
	"tumdlr/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage tumdlr configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TUMDLR_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.tumdlr.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources.

The API key is masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# tumdlr configuration file
#
# Every option can also be set with an environment variable prefixed
# with TUMDLR_, for example TUMDLR_API_KEY or TUMDLR_SAVE_PATH.

# Tumblr API settings
tumblr:
  # API key for the Tumblr v2 API (required)
  # Register an application at https://www.tumblr.com/oauth/apps
  api_key: "YOUR_API_KEY"

  # User agent string (optional)
  user_agent: ""

# Output settings
output:
  # Root directory all downloads are saved under
  save_path: "./downloads"

# Folder categorization
# Each toggle adds one level to the save path of every file.
categorization:
  # Create a folder per blog
  user: true

  # Create a folder per post type (photos, videos)
  post_type: true

  # Create a folder per multi-photo post, named after the post id
  photosets: true

# Download settings
download:
  # Number of concurrent downloads
  # Range: 1-10
  concurrent_downloads: 3

  # Per-request download timeout
  download_timeout: 30s

  # Write a JSON metadata sidecar next to every file
  save_metadata: false

# Rate limiting
rate_limit:
  # API requests per minute
  requests_per_minute: 60

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to the console only
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".tumdlr.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and add your Tumblr API key")
	fmt.Println("2. Run 'tumdlr config validate' to check the configuration")
	fmt.Println("3. Start downloading with 'tumdlr download <blog>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(configFile); err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if err := cfg.LoadFromEnv(); err != nil {
		ui.PrintError("Failed to load environment variables", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	if key := displayCfg.Tumblr.APIKey; key != "" {
		if len(key) > 8 {
			displayCfg.Tumblr.APIKey = key[:4] + "..." + key[len(key)-4:]
		} else {
			displayCfg.Tumblr.APIKey = "***"
		}
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (TUMDLR_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile == "" {
		possiblePaths := []string{
			".tumdlr.yaml",
			".tumdlr.yml",
			filepath.Join(os.Getenv("HOME"), ".tumdlr.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "tumdlr", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	errors := []string{}

	if cfg.Tumblr.APIKey == "" || cfg.Tumblr.APIKey == "YOUR_API_KEY" {
		warnings = append(warnings, "Tumblr API key not configured")
	}

	if cfg.Output.SavePath != "" {
		if err := os.MkdirAll(cfg.Output.SavePath, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create save path: %v", err))
		}
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Save path: %s\n", cfg.Output.SavePath)
	fmt.Printf("  Categorize by blog: %t, post type: %t, photosets: %t\n",
		cfg.Categorization.User, cfg.Categorization.PostType, cfg.Categorization.Photosets)
	fmt.Printf("  Concurrent downloads: %d\n", cfg.Download.ConcurrentDownloads)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
