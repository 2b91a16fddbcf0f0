package verify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/earthdata-tools/h5remote/internal/hdf5"
	"github.com/earthdata-tools/h5remote/pkg/types"
)

type fakeFile struct {
	datasets map[string]*hdf5.Dataset
	probeErr error
	closed   bool
}

func (f *fakeFile) Dataset(path string) (*hdf5.Dataset, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	ds, ok := f.datasets[path]
	if !ok {
		return nil, hdf5.ErrNotExist
	}
	return ds, nil
}

func (f *fakeFile) Close() error {
	f.closed = true
	return nil
}

func testBundle() *types.CredentialBundle {
	return &types.CredentialBundle{
		AccessKey:    []byte("AKIA"),
		SecretKey:    []byte("secret"),
		SessionToken: []byte("token"),
		Region:       []byte("us-west-2"),
	}
}

func verifierFor(f *fakeFile, openErr error) *Verifier {
	return &Verifier{
		open: func(ctx context.Context, url string, bundle *types.CredentialBundle) (remoteFile, error) {
			if openErr != nil {
				return nil, openErr
			}
			return f, nil
		},
	}
}

func TestVerifyDatasetFound(t *testing.T) {
	f := &fakeFile{datasets: map[string]*hdf5.Dataset{
		DefaultDatasetPath: {Path: DefaultDatasetPath, Shape: []uint64{10, 3}},
	}}
	v := verifierFor(f, nil)

	result, err := v.Verify(context.Background(), "s3://b/f.h5", testBundle())
	require.NoError(t, err)

	assert.True(t, result.Opened)
	assert.True(t, result.DatasetFound)
	assert.Equal(t, []uint64{10, 3}, result.Shape)
	assert.True(t, f.closed)
}

func TestVerifyDatasetAbsentIsSuccess(t *testing.T) {
	f := &fakeFile{datasets: map[string]*hdf5.Dataset{}}
	v := verifierFor(f, nil)

	result, err := v.Verify(context.Background(), "s3://b/f.h5", testBundle())
	require.NoError(t, err)

	assert.True(t, result.Opened)
	assert.False(t, result.DatasetFound)
	assert.Nil(t, result.Shape)
	assert.True(t, f.closed)
}

func TestVerifyOpenFailure(t *testing.T) {
	cause := fmt.Errorf("403 Forbidden: signature mismatch")
	v := verifierFor(nil, cause)

	result, err := v.Verify(context.Background(), "s3://b/f.h5", testBundle())
	assert.False(t, result.Opened)

	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, "s3://b/f.h5", openErr.URL)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "signature mismatch")
}

func TestVerifyProbeFailureClosesFile(t *testing.T) {
	f := &fakeFile{probeErr: errors.New("group uses dense link storage")}
	v := verifierFor(f, nil)

	_, err := v.Verify(context.Background(), "s3://b/f.h5", testBundle())

	var openErr *OpenError
	require.ErrorAs(t, err, &openErr)
	assert.True(t, f.closed)
}

func TestVerifyCustomDatasetPath(t *testing.T) {
	const path = "/science/LSAR/RSLC/swaths/frequencyA"
	f := &fakeFile{datasets: map[string]*hdf5.Dataset{
		path: {Path: path, Shape: []uint64{8192, 4096}},
	}}
	v := verifierFor(f, nil)
	v.DatasetPath = path

	result, err := v.Verify(context.Background(), "s3://b/f.h5", testBundle())
	require.NoError(t, err)
	assert.True(t, result.DatasetFound)
	assert.Equal(t, []uint64{8192, 4096}, result.Shape)
}
