package s3file

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves one object from memory and honors Range headers the way S3
// does, counting round trips so the tests can assert on cache behavior.
type fakeS3 struct {
	object  []byte
	gets    int
	headErr error
	getErr  error
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(f.object)))}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.gets++

	var start, end int64
	if _, err := fmt.Sscanf(aws.ToString(in.Range), "bytes=%d-%d", &start, &end); err != nil {
		return nil, fmt.Errorf("bad range %q", aws.ToString(in.Range))
	}
	if start < 0 || end >= int64(len(f.object)) || start > end {
		return nil, fmt.Errorf("InvalidRange: %q", aws.ToString(in.Range))
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(f.object[start : end+1])),
	}, nil
}

func testObject(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}
	return b
}

func newTestReader(t *testing.T, fake *fakeS3) *Reader {
	t.Helper()
	r, err := open(context.Background(), fake, "bucket", "key")
	require.NoError(t, err)
	return r
}

func TestReadAtWithinOneBlock(t *testing.T) {
	obj := testObject(3 * blockSize)
	r := newTestReader(t, &fakeS3{object: obj})

	buf := make([]byte, 100)
	n, err := r.ReadAt(buf, 50)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, obj[50:150], buf)
}

func TestReadAtSpansBlocks(t *testing.T) {
	obj := testObject(3 * blockSize)
	fake := &fakeS3{object: obj}
	r := newTestReader(t, fake)

	buf := make([]byte, blockSize)
	n, err := r.ReadAt(buf, blockSize/2)
	require.NoError(t, err)
	assert.Equal(t, blockSize, n)
	assert.Equal(t, obj[blockSize/2:blockSize/2+blockSize], buf)
	assert.Equal(t, 2, fake.gets)
}

func TestReadAtReusesCachedBlocks(t *testing.T) {
	fake := &fakeS3{object: testObject(2 * blockSize)}
	r := newTestReader(t, fake)

	buf := make([]byte, 8)
	for i := 0; i < 10; i++ {
		_, err := r.ReadAt(buf, int64(i*8))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fake.gets)
}

func TestReadAtShortObjectTail(t *testing.T) {
	size := blockSize + 100
	obj := testObject(size)
	r := newTestReader(t, &fakeS3{object: obj})

	buf := make([]byte, 200)
	n, err := r.ReadAt(buf, int64(size-50))
	assert.Equal(t, 50, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, obj[size-50:], buf[:n])
}

func TestReadAtPastEnd(t *testing.T) {
	r := newTestReader(t, &fakeS3{object: testObject(64)})

	n, err := r.ReadAt(make([]byte, 8), 64)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestOpenPropagatesHeadError(t *testing.T) {
	_, err := open(context.Background(), &fakeS3{headErr: fmt.Errorf("403 Forbidden")}, "bucket", "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403 Forbidden")
	assert.Contains(t, err.Error(), "s3://bucket/key")
}

func TestReadAfterClose(t *testing.T) {
	r := newTestReader(t, &fakeS3{object: testObject(64)})
	require.NoError(t, r.Close())

	_, err := r.ReadAt(make([]byte, 8), 0)
	assert.ErrorContains(t, err, "closed")
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		in      string
		bucket  string
		key     string
		wantErr string
	}{
		{in: "s3://my-bucket/path/to/file.h5", bucket: "my-bucket", key: "path/to/file.h5"},
		{in: "s3://b/k", bucket: "b", key: "k"},
		{in: "https://example.com/file.h5", wantErr: "scheme"},
		{in: "s3://bucket-only", wantErr: "missing"},
		{in: "s3:///no-bucket", wantErr: "missing"},
	}

	for _, tt := range tests {
		bucket, key, err := parseURL(tt.in)
		if tt.wantErr != "" {
			assert.ErrorContains(t, err, tt.wantErr, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.bucket, bucket, tt.in)
		assert.Equal(t, tt.key, key, tt.in)
	}
}

func TestBlockEviction(t *testing.T) {
	fake := &fakeS3{object: testObject((maxBlocks + 2) * blockSize)}
	r := newTestReader(t, fake)

	buf := make([]byte, 1)
	for i := 0; i < maxBlocks+1; i++ {
		_, err := r.ReadAt(buf, int64(i*blockSize))
		require.NoError(t, err)
	}
	// Block 0 was evicted; touching it again costs another round trip.
	gets := fake.gets
	_, err := r.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, gets+1, fake.gets)
}
