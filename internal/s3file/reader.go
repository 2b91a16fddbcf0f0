// Package s3file exposes an S3 object as an io.ReaderAt using ranged GETs,
// which is all the HDF5 walker needs to probe a remote file without
// downloading it. Reads go through a small aligned block cache so repeated
// structural lookups near each other reuse one round trip.
package s3file

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/earthdata-tools/h5remote/pkg/types"
)

const (
	blockSize = 32 * 1024
	maxBlocks = 64
)

// api is the slice of the S3 client the reader uses.
type api interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Reader reads an S3 object by byte range. It is not safe for concurrent
// use. Close releases the block cache; the underlying HTTP connections
// belong to the SDK's pool.
type Reader struct {
	ctx    context.Context
	client api
	bucket string
	key    string
	size   int64

	blocks map[int64][]byte
	order  []int64
	closed bool
}

// Open authenticates with the bundle's static credentials and stats the
// object at rawURL. The call blocks for as long as the SDK's own network
// layer allows; no additional timeout is layered on top.
func Open(ctx context.Context, rawURL string, bundle *types.CredentialBundle) (*Reader, error) {
	bucket, key, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{
		Region: string(bundle.Region),
		Credentials: credentials.NewStaticCredentialsProvider(
			string(bundle.AccessKey),
			string(bundle.SecretKey),
			string(bundle.SessionToken),
		),
	})

	return open(ctx, client, bucket, key)
}

func open(ctx context.Context, client api, bucket, key string) (*Reader, error) {
	head, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("HEAD s3://%s/%s: %w", bucket, key, err)
	}

	return &Reader{
		ctx:    ctx,
		client: client,
		bucket: bucket,
		key:    key,
		size:   aws.ToInt64(head.ContentLength),
		blocks: make(map[int64][]byte),
	}, nil
}

// parseURL splits an s3://bucket/key URL.
func parseURL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("unsupported URL scheme %q (want s3://bucket/key)", u.Scheme)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("URL %q is missing a bucket or key", rawURL)
	}
	return bucket, key, nil
}

// Size returns the object's length in bytes.
func (r *Reader) Size() int64 { return r.size }

// ReadAt implements io.ReaderAt over ranged GETs.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if r.closed {
		return 0, fmt.Errorf("s3file: read on closed reader")
	}
	if off < 0 {
		return 0, fmt.Errorf("s3file: negative offset")
	}
	if off >= r.size {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && off+int64(n) < r.size {
		pos := off + int64(n)
		blockIdx := pos / blockSize
		block, err := r.block(blockIdx)
		if err != nil {
			return n, err
		}
		copied := copy(p[n:], block[pos-blockIdx*blockSize:])
		if copied == 0 {
			break
		}
		n += copied
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// block returns the cached block idx, fetching it if needed.
func (r *Reader) block(idx int64) ([]byte, error) {
	if b, ok := r.blocks[idx]; ok {
		return b, nil
	}

	start := idx * blockSize
	end := start + blockSize - 1
	if end >= r.size {
		end = r.size - 1
	}

	out, err := r.client.GetObject(r.ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	})
	if err != nil {
		return nil, fmt.Errorf("GET s3://%s/%s bytes=%d-%d: %w", r.bucket, r.key, start, end, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of s3://%s/%s: %w", r.bucket, r.key, err)
	}
	if int64(len(b)) != end-start+1 {
		return nil, fmt.Errorf("short range response for s3://%s/%s: got %d want %d", r.bucket, r.key, len(b), end-start+1)
	}

	if len(r.order) >= maxBlocks {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.blocks, oldest)
	}
	r.blocks[idx] = b
	r.order = append(r.order, idx)
	return b, nil
}

// Close drops the block cache. Subsequent reads fail.
func (r *Reader) Close() error {
	r.closed = true
	r.blocks = nil
	r.order = nil
	return nil
}
