package spool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// FileStore holds archived snapshots. Paths are slash separated and relative
// to the store root. Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens a file. A missing file yields an error wrapping
	// os.ErrNotExist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or truncates a file. The data is committed on Close.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes a file. Missing files are not an error.
	Delete(ctx context.Context, path string) error
}

// Local is a FileStore rooted at a directory.
type Local struct {
	root string
}

// NewLocal returns a Local store rooted at dir, creating it if needed.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("spool: %w", err)
	}
	return &Local{root: abs}, nil
}

func (l *Local) resolve(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(path))
}

func (l *Local) Read(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(l.resolve(path))
}

func (l *Local) Write(_ context.Context, path string) (io.WriteCloser, error) {
	full := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, err
	}
	return os.Create(full)
}

func (l *Local) Delete(_ context.Context, path string) error {
	err := os.Remove(l.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// S3Client is the subset of the S3 API used by S3Store. *s3.Client
// satisfies it.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store is a FileStore in an S3 bucket, with every key under an optional
// prefix.
type S3Store struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3 returns an S3 store. The client must already carry credentials,
// region and endpoint.
func NewS3(client S3Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

func (s *S3Store) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("spool: read s3://%s/%s: %w", s.bucket, s.key(path), os.ErrNotExist)
		}
		return nil, err
	}
	return out.Body, nil
}

// Write streams to a PutObject call running in the background. Close waits
// for the upload and returns its error.
func (s *S3Store) Write(ctx context.Context, path string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	w := &s3Writer{pw: pw, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		_, w.err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(path)),
			Body:   pr,
		})
		// Unblock writers if the upload stopped reading early.
		pr.CloseWithError(w.err)
	}()
	return w, nil
}

func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	return err
}

type s3Writer struct {
	pw   *io.PipeWriter
	done chan struct{}
	err  error
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *s3Writer) Close() error {
	w.pw.Close()
	<-w.done
	return w.err
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var (
	_ FileStore = (*Local)(nil)
	_ FileStore = (*S3Store)(nil)
)
