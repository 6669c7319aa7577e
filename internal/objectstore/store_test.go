package objectstore

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type fakeAPI struct {
	mu       sync.Mutex
	puts     []*s3.PutObjectInput
	bodies   [][]byte
	deadline bool
	putErr   error
	headErr  error
}

func (f *fakeAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, f.deadline = ctx.Deadline()
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(params.Body)
	f.puts = append(f.puts, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestPutSendsConditionalWrite(t *testing.T) {
	api := &fakeAPI{}
	store := New(api, "docs", time.Second)

	err := store.Put(context.Background(), PutInput{
		Key:         "organizations/acme/finance/uploads/a_20240102_030405.txt",
		Body:        []byte("hello"),
		ContentType: "text/plain",
		Metadata:    map[string]string{"user-id": "alice", "original-filename": "Résumé.txt"},
		NoOverwrite: true,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(api.puts) != 1 {
		t.Fatalf("expected 1 put, got %d", len(api.puts))
	}
	got := api.puts[0]
	if aws.ToString(got.Bucket) != "docs" || aws.ToString(got.IfNoneMatch) != "*" || aws.ToString(got.ContentType) != "text/plain" {
		t.Fatalf("unexpected input %+v", got)
	}
	if string(api.bodies[0]) != "hello" || aws.ToInt64(got.ContentLength) != 5 {
		t.Fatalf("unexpected body %q", api.bodies[0])
	}
	if got.Metadata["user-id"] != "alice" {
		t.Fatalf("metadata = %v", got.Metadata)
	}
	if got.Metadata["original-filename"] != "R%C3%A9sum%C3%A9.txt" {
		t.Fatalf("non-ascii metadata not escaped: %q", got.Metadata["original-filename"])
	}
	if !api.deadline {
		t.Fatal("expected a deadline on the put context")
	}
}

func TestPutMapsErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "precondition failed", err: &smithy.GenericAPIError{Code: "PreconditionFailed"}, wantErr: ErrObjectExists},
		{name: "conditional conflict", err: &smithy.GenericAPIError{Code: "ConditionalRequestConflict"}, wantErr: ErrObjectExists},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, wantErr: ErrUnavailable},
		{name: "network", err: errors.New("dial tcp: connection refused"), wantErr: ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := New(&fakeAPI{putErr: tt.err}, "docs", time.Second)
			err := store.Put(context.Background(), PutInput{Key: "k", Body: []byte("x"), NoOverwrite: true})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestPutWithoutConditionOmitsHeader(t *testing.T) {
	api := &fakeAPI{}
	if err := New(api, "docs", 0).Put(context.Background(), PutInput{Key: "k", Body: []byte("x")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if api.puts[0].IfNoneMatch != nil {
		t.Fatal("IfNoneMatch should be unset")
	}
	if api.puts[0].Metadata != nil {
		t.Fatal("empty metadata should be nil")
	}
}

func TestPing(t *testing.T) {
	if err := New(&fakeAPI{}, "docs", time.Second).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	err := New(&fakeAPI{headErr: errors.New("forbidden")}, "docs", time.Second).Ping(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
