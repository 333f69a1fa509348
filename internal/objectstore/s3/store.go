// store.go
//
// A publisher-scoped data package registry over relational metadata and object storage
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of datapackage-registry.
// datapackage-registry is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// datapackage-registry is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with datapackage-registry.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package s3 implements the objectstore.Store interface using the AWS SDK for S3-compatible storage.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
)

// maxDeleteBatch is the DeleteObjects request limit.
const maxDeleteBatch = 1000

// Config configures an S3 store.
type Config struct {
	// Bucket is the name of the S3 bucket.
	Bucket string

	// Region is the AWS region (e.g., "us-east-1").
	Region string

	// Endpoint is the S3 endpoint URL (e.g., "http://localhost:9000" for MinIO).
	// If empty, uses the default AWS endpoint for the region.
	Endpoint string

	// AccessKeyID and SecretAccessKey select static credentials.
	// If either is empty, the default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// UsePathStyle enables path-style addressing (required for MinIO).
	UsePathStyle bool

	// SignedURLTTL is the lifetime of signed upload URLs.
	SignedURLTTL time.Duration
}

// Store implements objectstore.Store using AWS S3.
type Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	ttl       time.Duration
}

// New creates a new S3 store with the given configuration.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket name is required")
	}

	opts := []func(*config.LoadOptions) error{}

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	} else {
		opts = append(opts, config.WithRegion("us-east-1"))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to load AWS config: %w", err)
	}

	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.DisableLogOutputChecksumValidationSkipped = true
		},
	}

	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = objectstore.DefaultSignedURLTTL
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	return &Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		ttl:       ttl,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	if err := s.Ping(ctx); err == nil {
		return nil
	}

	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return s.wrapError("CreateBucket", s.bucket, err)
	}
	return nil
}

// Put stores an object at the given key.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string, acl objectstore.ACL) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytesReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACL(acl),
	})
	if err != nil {
		return s.wrapError(objectstore.OpPut, key, err)
	}
	return nil
}

// Get retrieves an entire object.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.wrapError(objectstore.OpGet, key, err)
	}
	defer output.Body.Close()

	data, err := readAll(output.Body, aws.ToInt64(output.ContentLength))
	if err != nil {
		return nil, s.wrapError(objectstore.OpGet, key, err)
	}
	return data, nil
}

// CopyPrefix copies every object under src to dst with the given canned ACL.
func (s *Store) CopyPrefix(ctx context.Context, src, dst string, acl objectstore.ACL) error {
	keys, err := s.List(ctx, src)
	if err != nil {
		return err
	}

	failed := make(map[string]error)
	for _, key := range keys {
		target := dst + key[len(src):]
		_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(s.bucket),
			Key:        aws.String(target),
			CopySource: aws.String(copySource(s.bucket, key)),
			ACL:        types.ObjectCannedACL(acl),
		})
		if err != nil {
			failed[key] = s.wrapError(objectstore.OpCopy, key, err)
		}
	}

	if len(failed) > 0 {
		return &objectstore.BatchError{Op: objectstore.OpCopy, Prefix: src, Failed: failed}
	}
	return nil
}

// DeletePrefix removes every object under prefix in batches of up to 1000 keys.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}

	failed := make(map[string]error)
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(key)})
		}

		output, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			wrapped := s.wrapError(objectstore.OpDelete, prefix, err)
			for _, key := range keys[start:end] {
				failed[key] = wrapped
			}
			continue
		}
		for _, e := range output.Errors {
			failed[aws.ToString(e.Key)] = fmt.Errorf("%s: %s", aws.ToString(e.Code), aws.ToString(e.Message))
		}
	}

	if len(failed) > 0 {
		return &objectstore.BatchError{Op: objectstore.OpDelete, Prefix: prefix, Failed: failed}
	}
	return nil
}

// SetACL applies a canned ACL to every object under prefix.
func (s *Store) SetACL(ctx context.Context, prefix string, acl objectstore.ACL) error {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return err
	}

	failed := make(map[string]error)
	for _, key := range keys {
		_, err := s.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			ACL:    types.ObjectCannedACL(acl),
		})
		if err != nil {
			failed[key] = s.wrapError(objectstore.OpSetACL, key, err)
		}
	}

	if len(failed) > 0 {
		return &objectstore.BatchError{Op: objectstore.OpSetACL, Prefix: prefix, Failed: failed}
	}
	return nil
}

// SignedUploadURL presigns a public-read PutObject bound to contentMD5.
func (s *Store) SignedUploadURL(ctx context.Context, key, contentMD5, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(key),
		ContentMD5: aws.String(contentMD5),
		ACL:        types.ObjectCannedACLPublicRead,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", s.wrapError(objectstore.OpSignedUpload, key, err)
	}
	return req.URL, nil
}

// List returns the keys under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.wrapError(objectstore.OpList, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	return keys, nil
}

// Ping checks the bucket is reachable with HeadBucket.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return s.wrapError(objectstore.OpPing, s.bucket, err)
	}
	return nil
}

func copySource(bucket, key string) string {
	return (&url.URL{Path: bucket + "/" + key}).EscapedPath()
}

func (s *Store) wrapError(op, key string, err error) error {
	if err == nil {
		return nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch code := respErr.HTTPStatusCode(); {
		case code == http.StatusNotFound:
			var noSuchBucket *types.NoSuchBucket
			if errors.As(err, &noSuchBucket) {
				return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrBucketNotFound}
			}
			return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrNotFound}
		case code == http.StatusForbidden:
			return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrAccessDenied}
		case code >= http.StatusInternalServerError:
			return &objectstore.ObjectError{Op: op, Key: key, Err: fmt.Errorf("%w: %v", objectstore.ErrUnavailable, err)}
		}
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return &objectstore.ObjectError{Op: op, Key: key, Err: objectstore.ErrNotFound}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return &objectstore.ObjectError{Op: op, Key: key, Err: fmt.Errorf("%w: %v", objectstore.ErrUnavailable, err)}
	}

	return &objectstore.ObjectError{Op: op, Key: key, Err: err}
}

// Verify interface compliance at compile time.
var _ objectstore.Store = (*Store)(nil)
