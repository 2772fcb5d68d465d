// Package s3store implements the document store on top of an S3 bucket.
// Each document is one object under a configurable key prefix, with the
// document record as its JSON body.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hengadev/serialx/internal/json"
	"github.com/hengadev/serialx/internal/store"
)

// Client is the subset of the S3 API the store uses. It exists so tests can
// substitute a fake without a bucket.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store is an S3-backed store.DocumentStore.
type Store struct {
	client Client
	bucket string
	prefix string
}

var _ store.DocumentStore = (*Store)(nil)

// New builds a Store over an existing client.
func New(client Client, bucket, prefix string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is empty")
	}
	return &Store{client: client, bucket: bucket, prefix: prefix}, nil
}

// NewFromConfig builds a Store with a real S3 client resolved from the
// default AWS configuration chain.
func NewFromConfig(ctx context.Context, bucket, prefix, region string) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}
	return New(s3.NewFromConfig(cfg), bucket, prefix)
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) Put(ctx context.Context, doc store.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", doc.ID, err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(doc.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put document %q: %w", doc.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (store.Document, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return store.Document{}, store.ErrNotFound
		}
		return store.Document{}, fmt.Errorf("get document %q: %w", id, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return store.Document{}, fmt.Errorf("read document %q: %w", id, err)
	}
	var doc store.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return store.Document{}, fmt.Errorf("decode document %q: %w", id, err)
	}
	return doc, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]store.Document, error) {
	ids, err := s.listIDs(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue // deleted between list and get
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].CreatedAt.Before(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return []store.Document{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(docs) {
		end = len(docs)
	}
	return docs[offset:end], nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	ids, err := s.listIDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) listIDs(ctx context.Context) ([]string, error) {
	var ids []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			ids = append(ids, key[len(s.prefix):])
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			return ids, nil
		}
		token = out.NextContinuationToken
	}
}
