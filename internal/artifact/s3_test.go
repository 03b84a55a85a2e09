package artifact

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var _ S3API = (*s3.Client)(nil)

// mockS3 is an in-memory bucket that pages listings two keys at a time.
type mockS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modified map[string]time.Time
	putErr   error
	deleted  []string
}

func newMockS3() *mockS3 {
	return &mockS3{objects: map[string][]byte{}, modified: map[string]time.Time{}}
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, _ := io.ReadAll(in.Body)
	m.objects[aws.ToString(in.Key)] = data
	m.modified[aws.ToString(in.Key)] = time.Now()
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		for i, k := range keys {
			if k == *in.ContinuationToken {
				start = i
				break
			}
		}
	}
	end := min(start+2, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(k),
			LastModified: aws.Time(m.modified[k]),
		})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := aws.ToString(in.Key)
	m.deleted = append(m.deleted, k)
	delete(m.objects, k)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_PutGet(t *testing.T) {
	t.Parallel()

	mock := newMockS3()
	s := NewS3Store(mock, "docs", "/pdfs/")
	ctx := context.Background()

	if err := s.Put(ctx, "a.pdf", []byte("%PDF")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := mock.objects["pdfs/a.pdf"]; !ok {
		t.Errorf("object keys = %v, want pdfs/a.pdf", mock.objects)
	}

	got, err := s.Get(ctx, "a.pdf")
	if err != nil || string(got) != "%PDF" {
		t.Errorf("Get() = %q, %v", got, err)
	}

	if _, err := s.Get(ctx, "missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.Put(ctx, "../x.pdf", nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Put(traversal) error = %v, want ErrInvalidKey", err)
	}

	mock.putErr = errors.New("access denied")
	if err := s.Put(ctx, "b.pdf", nil); err == nil || !strings.Contains(err.Error(), "s3://docs") {
		t.Errorf("Put() error = %v, want bucket in message", err)
	}
}

func TestS3Store_Sweep(t *testing.T) {
	t.Parallel()

	mock := newMockS3()
	s := NewS3Store(mock, "docs", "pdfs")
	old := time.Now().Add(-48 * time.Hour)
	for _, k := range []string{"pdfs/1.pdf", "pdfs/2.pdf", "pdfs/3.pdf", "pdfs/4.pdf", "pdfs/5.pdf"} {
		mock.objects[k] = []byte("x")
		mock.modified[k] = time.Now()
	}
	mock.modified["pdfs/1.pdf"] = old
	mock.modified["pdfs/4.pdf"] = old
	mock.objects["other/1.pdf"] = []byte("x")
	mock.modified["other/1.pdf"] = old

	n, err := s.Sweep(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Sweep() = %d, want 2 (deleted %v)", n, mock.deleted)
	}
	if _, ok := mock.objects["other/1.pdf"]; !ok {
		t.Error("objects outside the prefix must not be swept")
	}
}
