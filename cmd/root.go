package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/earthdata-tools/h5remote/internal/config"
)

var (
	// Global flags
	profile string
)

var rootCmd = &cobra.Command{
	Use:   "h5remote",
	Short: "h5remote - verify remote HDF5 access over S3",
	Long: `h5remote checks that this environment can authenticate against S3 and
open a remotely hosted HDF5 file through byte-range reads, before you run
data-processing pipelines that depend on remote-backed file access.

Credentials and region are read for one named profile from ~/.aws/credentials
and ~/.aws/config, all-or-nothing: a partially configured profile is reported
as a specific error instead of degrading to anonymous access.

Examples:
  h5remote verify s3://bucket/product.h5   # Resolve credentials, open, probe
  h5remote whoami                          # Identity behind the resolved credentials
  h5remote profile                         # Interactive profile selector
  h5remote profile ls                      # List profiles from both AWS files`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Any error has already named the file,
// profile or field involved; it goes to stderr and the process exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "AWS profile to use")

	// Bind flags to viper
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
}

func initConfig() {
	// Read from environment variables
	viper.SetEnvPrefix("H5REMOTE")
	viper.AutomaticEnv()

	// Priority for profile: --profile flag > ~/.h5remote/config.yaml > AWS_PROFILE env
	if profile == "" {
		if saved := config.GetSavedProfile(); saved != "" {
			profile = saved
		} else {
			profile = os.Getenv("AWS_PROFILE")
		}
	}
}

// GetProfile returns the AWS profile
func GetProfile() string {
	return profile
}
