package spool

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type apiError struct {
	code string
}

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

// fakeS3 keeps objects in a map.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &apiError{code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func testStores(t *testing.T) map[string]FileStore {
	t.Helper()
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]FileStore{
		"local": local,
		"s3":    NewS3(newFakeS3(), "bucket", "pre"),
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	for name, fs := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			w, err := fs.Write(ctx, "a/b.bin")
			if err != nil {
				t.Fatal(err)
			}
			io.WriteString(w, "payload")
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}

			r, err := fs.Read(ctx, "a/b.bin")
			if err != nil {
				t.Fatal(err)
			}
			got, _ := io.ReadAll(r)
			r.Close()
			if string(got) != "payload" {
				t.Errorf("got=%q", got)
			}

			if err := fs.Delete(ctx, "a/b.bin"); err != nil {
				t.Fatal(err)
			}
			if err := fs.Delete(ctx, "a/b.bin"); err != nil {
				t.Errorf("second Delete: %v", err)
			}
			if _, err := fs.Read(ctx, "a/b.bin"); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("Read deleted: %v", err)
			}
		})
	}
}

func TestS3Store_Prefix(t *testing.T) {
	fake := newFakeS3()
	store := NewS3(fake, "bucket", "pre")
	w, _ := store.Write(context.Background(), "x")
	w.Close()
	if _, ok := fake.objects["pre/x"]; !ok {
		t.Errorf("objects=%v", fake.objects)
	}
}

func TestS3Store_PutError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("denied")
	store := NewS3(fake, "bucket", "")
	w, _ := store.Write(context.Background(), "x")
	w.Write([]byte("data"))
	if err := w.Close(); err == nil || err.Error() != "denied" {
		t.Errorf("Close error=%v", err)
	}
}
