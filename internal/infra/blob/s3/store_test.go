package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"immunizetrack/internal/blob/core"
)

type fakeObject struct {
	body        []byte
	contentType string
	metadata    map[string]string
}

type fakeAPI struct {
	mu       sync.Mutex
	objects  map[string]fakeObject
	pageSize int
	failPut  error
}

func newFakeAPI() *fakeAPI { return &fakeAPI{objects: map[string]fakeObject{}, pageSize: 2} }

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = fakeObject{body: body, contentType: aws.ToString(in.ContentType), metadata: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(string(obj.body))),
		ContentLength: aws.Int64(int64(len(obj.body))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(`"etag"`),
		Metadata:      obj.metadata,
	}, nil
}

func (f *fakeAPI) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.body))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(`"etag"`),
		Metadata:      obj.metadata,
		LastModified:  aws.Time(time.Unix(0, 0).UTC()),
	}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	start := 0
	if in.ContinuationToken != nil {
		_, _ = fmt.Sscanf(*in.ContinuationToken, "%d", &start)
	}
	end := min(start+f.pageSize, len(keys))
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(f.objects[k].body)))})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(fmt.Sprint(end))
	}
	return out, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &v4.PresignedHTTPRequest{URL: fmt.Sprintf("https://bucket.local/%s?expires=%s", aws.ToString(in.Key), opts.Expires)}, nil
}

func TestS3StorePutGetAndPrefix(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	s := NewWithClient(api, fakePresigner{}, "bucket", "immunizetrack")
	info, err := s.Put(ctx, "exports/a.csv", strings.NewReader("id\n"), core.PutOptions{ContentType: "text/csv", Metadata: map[string]string{"kind": "patient"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "exports/a.csv" || info.Size != 3 || info.ETag != "etag" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, ok := api.objects["immunizetrack/exports/a.csv"]; !ok {
		t.Fatalf("expected prefixed object key, got %v", api.objects)
	}
	if _, err := s.Put(ctx, "exports/a.csv", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, rc, err := s.Get(ctx, "exports/a.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "id\n" || got.Metadata["kind"] != "patient" {
		t.Fatalf("unexpected get %+v %q", got, body)
	}
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestS3StoreListFollowsContinuation(t *testing.T) {
	ctx := context.Background()
	s := NewWithClient(newFakeAPI(), nil, "bucket", "")
	for _, key := range []string{"e/3", "e/1", "e/2", "e/5", "e/4", "x/1"} {
		if _, err := s.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := s.List(ctx, "e/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 5 || list[0].Key != "e/1" || list[4].Key != "e/5" {
		t.Fatalf("unexpected list %+v", list)
	}
	if _, err := s.PresignURL(ctx, "e/1", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported without presigner, got %v", err)
	}
}

func TestS3StoreDeleteAndPresign(t *testing.T) {
	ctx := context.Background()
	s := NewWithClient(newFakeAPI(), fakePresigner{}, "bucket", "")
	if ok, err := s.Delete(ctx, "nothing"); ok || err != nil {
		t.Fatalf("expected missing delete, got %v %v", ok, err)
	}
	if _, err := s.Put(ctx, "k", strings.NewReader("v"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	url, err := s.PresignURL(ctx, "k", core.SignedURLOptions{Expiry: time.Minute})
	if err != nil || !strings.Contains(url, "expires=1m0s") {
		t.Fatalf("unexpected url %q %v", url, err)
	}
	if ok, err := s.Delete(ctx, "k"); !ok || err != nil {
		t.Fatalf("expected delete, got %v %v", ok, err)
	}
}

func TestS3StorePutError(t *testing.T) {
	api := newFakeAPI()
	api.failPut = errors.New("denied")
	s := NewWithClient(api, nil, "bucket", "")
	if _, err := s.Put(context.Background(), "k", strings.NewReader("v"), core.PutOptions{}); err == nil || !strings.Contains(err.Error(), "denied") {
		t.Fatalf("expected put error, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("IMMUNIZETRACK_BLOB_S3_BUCKET", "records")
	t.Setenv("IMMUNIZETRACK_BLOB_S3_PATH_STYLE", "TRUE")
	t.Setenv("IMMUNIZETRACK_BLOB_S3_ENDPOINT", "http://minio:9000")
	cfg := ConfigFromEnv()
	if cfg.Bucket != "records" || !cfg.PathStyle || cfg.Endpoint != "http://minio:9000" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
