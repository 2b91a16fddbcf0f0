package types

// AWSProfile is a profile discovered in the shared AWS credentials or
// config file. Source records which file declared it; a profile present
// in both is reported once with Source "credentials".
type AWSProfile struct {
	Name   string
	Region string // from the config file if set
	Source string // "credentials" or "config"
}
