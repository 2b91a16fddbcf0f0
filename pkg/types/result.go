package types

// VerificationResult reports the outcome of a remote-file check.
// Opened is true whenever the file itself could be opened and parsed;
// DatasetFound only says whether the probed path exists inside it.
// Shape holds the dataset's stored dimensions (empty for a scalar).
type VerificationResult struct {
	Opened       bool
	DatasetFound bool
	Shape        []uint64
}
