// Package objectstore writes documents and their sidecars to an S3 bucket.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

var (
	ErrObjectExists = errors.New("object already exists")
	ErrUnavailable  = errors.New("object store unavailable")
)

// API is the subset of the S3 client the store calls.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type PutInput struct {
	Key         string
	Body        []byte
	ContentType string
	// Metadata is sent as x-amz-meta-* headers.
	Metadata map[string]string
	// NoOverwrite makes the write conditional on the key being absent.
	NoOverwrite bool
}

type Store struct {
	api     API
	bucket  string
	timeout time.Duration
}

func New(api API, bucket string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{api: api, bucket: bucket, timeout: timeout}
}

func (s *Store) Bucket() string {
	return s.bucket
}

func (s *Store) Put(ctx context.Context, in PutInput) error {
	putCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(in.Key),
		Body:          bytes.NewReader(in.Body),
		ContentLength: aws.Int64(int64(len(in.Body))),
		Metadata:      headerSafe(in.Metadata),
	}
	if in.ContentType != "" {
		params.ContentType = aws.String(in.ContentType)
	}
	if in.NoOverwrite {
		params.IfNoneMatch = aws.String("*")
	}

	if _, err := s.api.PutObject(putCtx, params); err != nil {
		if isPreconditionFailure(err) {
			return fmt.Errorf("%w: %s", ErrObjectExists, in.Key)
		}
		return fmt.Errorf("%w: put %s: %v", ErrUnavailable, in.Key, err)
	}
	return nil
}

// Ping checks that the bucket exists and the credentials can reach it.
func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.api.HeadBucket(pingCtx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("%w: head bucket %s: %v", ErrUnavailable, s.bucket, err)
	}
	return nil
}

func isPreconditionFailure(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusPreconditionFailed, http.StatusConflict:
			return true
		}
	}
	return false
}

// headerSafe escapes values that cannot travel in an HTTP header as-is.
func headerSafe(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if isPrintableASCII(v) {
			out[k] = v
			continue
		}
		out[k] = url.QueryEscape(v)
	}
	return out
}

func isPrintableASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
