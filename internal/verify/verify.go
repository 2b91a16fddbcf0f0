// Package verify opens a remote HDF5 file with a resolved credential bundle
// and probes it for a well-known dataset. A missing dataset is a successful
// outcome: the point of the check is whether the environment can open remote
// files at all.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/earthdata-tools/h5remote/internal/hdf5"
	"github.com/earthdata-tools/h5remote/internal/s3file"
	"github.com/earthdata-tools/h5remote/pkg/types"
)

// DefaultDatasetPath is the dataset probed when none is configured. It is a
// small identification flag present in NISAR L-band products.
const DefaultDatasetPath = "/science/LSAR/identification/diagnosticModeFlag"

// OpenError wraps any failure at the remote boundary: rejected credentials,
// network errors, malformed URLs, unparseable file structure. Callers only
// ever show the message to an operator, so the underlying cause is carried
// but not classified further.
type OpenError struct {
	URL string
	Err error
}

func (e *OpenError) Error() string { return fmt.Sprintf("opening %s: %v", e.URL, e.Err) }
func (e *OpenError) Unwrap() error { return e.Err }

// remoteFile is the slice of an opened container Verify needs.
type remoteFile interface {
	Dataset(path string) (*hdf5.Dataset, error)
	Close() error
}

// Verifier runs the remote-open check. The zero value works; DatasetPath
// overrides the probed path and open is replaceable in tests.
type Verifier struct {
	DatasetPath string

	open func(ctx context.Context, url string, bundle *types.CredentialBundle) (remoteFile, error)
}

// New returns a verifier backed by the S3 ranged reader.
func New() *Verifier {
	return &Verifier{open: openRemote}
}

// Verify opens url with the bundle and probes the dataset path. It returns
// an *OpenError for any remote failure; the remote handle is closed on every
// path once the open has succeeded.
func (v *Verifier) Verify(ctx context.Context, url string, bundle *types.CredentialBundle) (types.VerificationResult, error) {
	openFn := v.open
	if openFn == nil {
		openFn = openRemote
	}

	f, err := openFn(ctx, url, bundle)
	if err != nil {
		return types.VerificationResult{}, &OpenError{URL: url, Err: err}
	}
	defer f.Close()

	path := v.DatasetPath
	if path == "" {
		path = DefaultDatasetPath
	}

	ds, err := f.Dataset(path)
	if errors.Is(err, hdf5.ErrNotExist) {
		return types.VerificationResult{Opened: true}, nil
	}
	if err != nil {
		return types.VerificationResult{}, &OpenError{URL: url, Err: err}
	}

	return types.VerificationResult{
		Opened:       true,
		DatasetFound: true,
		Shape:        ds.Shape,
	}, nil
}

// openRemote stacks the HDF5 walker on the S3 ranged reader. Closing the
// returned file releases the reader and its block cache.
func openRemote(ctx context.Context, url string, bundle *types.CredentialBundle) (remoteFile, error) {
	r, err := s3file.Open(ctx, url, bundle)
	if err != nil {
		return nil, err
	}
	f, err := hdf5.Open(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &remoteH5{file: f, reader: r}, nil
}

type remoteH5 struct {
	file   *hdf5.File
	reader *s3file.Reader
}

func (h *remoteH5) Dataset(path string) (*hdf5.Dataset, error) { return h.file.Dataset(path) }
func (h *remoteH5) Close() error                               { return h.reader.Close() }
