package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/kendall-kelly/chatwidget-api/generator"
	"github.com/kendall-kelly/chatwidget-api/logger"
)

// S3ArtifactStore publishes artifact sets to a bucket. Each run uploads its
// three objects under a private staging prefix and then copies them to their
// public keys, markup last, so the public markup only ever references a
// script and stylesheet that are already in place.
type S3ArtifactStore struct {
	s3     S3Interface
	prefix string
	log    logger.Logger
}

// NewS3ArtifactStore creates a store that publishes under prefix.
func NewS3ArtifactStore(s3 S3Interface, prefix string, log logger.Logger) *S3ArtifactStore {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &S3ArtifactStore{s3: s3, prefix: strings.Trim(prefix, "/"), log: log}
}

// Key returns the public object key of one artifact.
func (s *S3ArtifactStore) Key(identifier string, kind generator.Kind) string {
	return path.Join(s.prefix, generator.ArtifactFilename(identifier, kind))
}

func (s *S3ArtifactStore) stagingKey(run, identifier string, kind generator.Kind) string {
	return path.Join(s.prefix, ".staging", identifier, run, generator.ArtifactFilename(identifier, kind))
}

// Write implements generator.ArtifactStore.
func (s *S3ArtifactStore) Write(ctx context.Context, identifier string, set generator.ArtifactSet) error {
	run := uuid.NewString()
	var staged []string
	defer func() {
		// staging objects are removed whatever the outcome
		cleanup := context.WithoutCancel(ctx)
		for _, key := range staged {
			if err := s.s3.DeleteObject(cleanup, key); err != nil {
				s.log.WithError(err).Warn("failed to remove staged artifact", map[string]interface{}{"key": key})
			}
		}
	}()

	for _, kind := range generator.Kinds {
		key := s.stagingKey(run, identifier, kind)
		if err := s.s3.PutObject(ctx, key, []byte(set.Content(kind)), kind.ContentType()); err != nil {
			return generator.ArtifactWriteFailure(fmt.Sprintf("could not stage %s artifact", kind), err)
		}
		staged = append(staged, key)
	}

	for i, kind := range generator.Kinds {
		if err := s.s3.CopyObject(ctx, staged[i], s.Key(identifier, kind)); err != nil {
			return generator.ArtifactWriteFailure(fmt.Sprintf("could not publish %s artifact", kind), err)
		}
	}
	return nil
}
