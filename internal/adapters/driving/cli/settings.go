package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/resumerag/internal/core/domain"
	"github.com/custodia-labs/resumerag/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings. Values come from built-in defaults, the
configuration file and environment variables, in increasing priority.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Stores a setting in the configuration file. An empty value resets the
key to its default. API keys are read from the terminal without echo when the
value is omitted.

Run "resumerag settings keys" for the list of keys.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive provider setup",
	Long:  `Run an interactive wizard to configure the embedding and generation providers.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsWizard,
}

// passwordReader reads a secret. Replaced in tests.
var passwordReader = readPassword

// promptInput is where the wizard reads answers from.
var promptInput io.Reader = os.Stdin

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	values, err := settingsService.Values()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	return render(cmd, values, func() {
		cmd.Println("Current Settings")
		cmd.Println("================")
		cmd.Printf("Config file: %s\n", settingsService.ConfigPath())

		section := ""
		for _, v := range values {
			prefix, name, found := strings.Cut(v.Key, ".")
			if !found {
				prefix, name = "general", v.Key
			}
			if prefix != section {
				section = prefix
				cmd.Printf("\n[%s]\n", section)
			}
			value := v.Value
			if value == "" {
				value = "(not set)"
			}
			if v.Source == driving.SettingSourceDefault {
				cmd.Printf("  %-20s %s\n", name, value)
			} else {
				cmd.Printf("  %-20s %s (%s)\n", name, value, v.Source)
			}
		}
	})
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecretKey(key):
		cmd.Printf("Enter %s: ", key)
		value = passwordReader()
		cmd.Println()
	default:
		return fmt.Errorf("%w: missing value for %s", domain.ErrInvalidInput, key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if strings.TrimSpace(value) == "" {
		cmd.Printf("Reset %s to default.\n", key)
		return nil
	}
	if isSecretKey(key) {
		cmd.Printf("Set %s to %s\n", key, maskAPIKey(value))
		return nil
	}
	cmd.Printf("Set %s to %s\n", key, value)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	keys := settingsService.Keys()
	return render(cmd, keys, func() {
		for _, k := range keys {
			cmd.Println(k)
		}
	})
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("resumerag Settings Wizard")
	cmd.Println("=========================")
	cmd.Println()

	reader := bufio.NewReader(promptInput)

	cmd.Println("Step 1: Embedding Provider")
	cmd.Println("--------------------------")
	cmd.Println("Changing the embedding model invalidates the current index.")
	if err := configureProvider(cmd, reader, "embedding", domain.DefaultEmbeddingModels()); err != nil {
		return err
	}

	cmd.Println("Step 2: Generation Provider")
	cmd.Println("---------------------------")
	if err := configureProvider(cmd, reader, "llm", domain.DefaultLLMModels()); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if _, err := settingsService.Get(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Printf("Settings saved to %s\n", settingsService.ConfigPath())
	}
	return nil
}

// configureProvider asks for provider, model and API key under the
// given settings prefix.
func configureProvider(cmd *cobra.Command, reader *bufio.Reader, prefix string, defaults map[domain.AIProvider]string) error {
	providers := domain.AllProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaults[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = passwordReader()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.Set(prefix+".provider", provider.String()); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", prefix, err)
	}
	if err := settingsService.Set(prefix+".model", model); err != nil {
		return fmt.Errorf("failed to configure %s model: %w", prefix, err)
	}
	if apiKey != "" {
		if err := settingsService.Set(prefix+".api_key", apiKey); err != nil {
			return fmt.Errorf("failed to configure %s API key: %w", prefix, err)
		}
	}

	cmd.Printf("Configured %s: %s (%s)\n\n", prefix, provider.Description(), model)
	return nil
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key")
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
