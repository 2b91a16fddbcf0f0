package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/earthdata-tools/h5remote/internal/aws"
	"github.com/earthdata-tools/h5remote/internal/creds"
	"github.com/earthdata-tools/h5remote/internal/ui"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the resolved credentials",
	Long: `Resolve the active profile's credential bundle and ask STS who it
belongs to. This proves the exact values read from the AWS files can sign a
request, without touching any S3 object.

Examples:
  h5remote whoami
  h5remote whoami -p saml-pub`,
	RunE: runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	profileName := getActiveProfile()
	if profileName == "" {
		return fmt.Errorf("no profile selected; use --profile, 'h5remote profile', or AWS_PROFILE")
	}

	bundle, err := creds.NewResolver().Resolve(profileName)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully loaded credentials and region for profile %q.\n", profileName)

	identity, err := aws.GetCallerIdentity(context.Background(), bundle)
	if err != nil {
		return fmt.Errorf("failed to get caller identity: %w", err)
	}

	fmt.Println()
	fmt.Println(ui.HeaderStyle.Render("AWS Identity"))
	fmt.Println(ui.MutedStyle.Render("───────────────────────────────"))
	fmt.Printf("  Profile: %s\n", profileName)
	fmt.Printf("  Region:  %s\n", string(bundle.Region))
	fmt.Println()
	fmt.Printf("  Account: %s\n", identity.Account)
	fmt.Printf("  UserID:  %s\n", identity.UserID)
	fmt.Printf("  ARN:     %s\n", ui.MutedStyle.Render(identity.Arn))

	return nil
}
