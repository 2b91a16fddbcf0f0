package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/earthdata-tools/h5remote/internal/config"
	"github.com/earthdata-tools/h5remote/internal/creds"
	"github.com/earthdata-tools/h5remote/internal/ui"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage AWS profiles",
	Long: `Manage the AWS profile used for verification runs.

When run without subcommands, shows an interactive selector to choose a profile.

Examples:
  h5remote profile                    # Interactive profile selector
  h5remote profile ls                 # List all available profiles
  h5remote profile set my-profile     # Set a specific profile`,
	RunE: runProfileInteractive,
}

var profileLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List available AWS profiles",
	Long: `List all available AWS profiles from ~/.aws/credentials and ~/.aws/config.

Examples:
  h5remote profile ls`,
	RunE: runProfileList,
}

var profileSetCmd = &cobra.Command{
	Use:   "set <profile-name>",
	Short: "Set the active AWS profile",
	Long: `Set a specific AWS profile as active.

The profile will be saved to ~/.h5remote/config.yaml and used by future
verification runs.

Examples:
  h5remote profile set my-profile
  h5remote profile set saml-pub`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileSet,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileLsCmd)
	profileCmd.AddCommand(profileSetCmd)
}

func runProfileInteractive(cmd *cobra.Command, args []string) error {
	profiles, err := creds.NewResolver().List()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Println("No AWS profiles found")
		fmt.Println("Create profiles in ~/.aws/credentials or ~/.aws/config")
		return nil
	}

	// Get current active profile
	activeProfile := getActiveProfile()

	// Show interactive selector
	selected, err := ui.SelectProfile(profiles, activeProfile)
	if err != nil {
		return err
	}

	// Save to config
	if err := config.SetProfile(selected.Name); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save profile to config: %v\n", err)
	}

	fmt.Printf("\nProfile set to: %s\n", selected.Name)
	fmt.Printf("Saved to: %s\n", config.GetConfigPath())

	return nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	profiles, err := creds.NewResolver().List()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Println("No AWS profiles found")
		fmt.Println("Create profiles in ~/.aws/credentials or ~/.aws/config")
		return nil
	}

	// Get current active profile
	activeProfile := getActiveProfile()

	ui.PrintProfileTable(profiles, activeProfile)
	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	// Validate profile exists
	if !creds.NewResolver().Exists(profileName) {
		return fmt.Errorf("profile %q not found", profileName)
	}

	// Save to config
	if err := config.SetProfile(profileName); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	fmt.Printf("Profile set to: %s\n", profileName)
	fmt.Printf("Saved to: %s\n", config.GetConfigPath())

	return nil
}

// getActiveProfile returns the currently active profile
func getActiveProfile() string {
	// Priority: --profile flag > config file > AWS_PROFILE env
	if profile != "" {
		return profile
	}

	if saved := config.GetSavedProfile(); saved != "" {
		return saved
	}

	return os.Getenv("AWS_PROFILE")
}
