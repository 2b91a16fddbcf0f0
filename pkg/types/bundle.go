package types

// CredentialBundle is the complete set of values required to authenticate a
// remote open. The fields are kept as raw bytes taken verbatim from the AWS
// files: they feed SigV4 signing, so no trimming or re-encoding is applied.
// A bundle is either fully populated or not constructed at all.
type CredentialBundle struct {
	AccessKey    []byte
	SecretKey    []byte
	SessionToken []byte
	Region       []byte
}
