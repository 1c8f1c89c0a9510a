// internal/state/s3.go
package state

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mirror pushes league documents to an S3 bucket as a disaster backstop.
// It is strictly best effort on the write path: the local database is the
// source of truth and a mirror outage must never block a transfer.
type Mirror struct {
	client *s3.Client
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewMirror builds a Mirror using the ambient AWS credential chain.
func NewMirror(ctx context.Context, bucket, prefix string) (*Mirror, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return &Mirror{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
		logger: log.With().Str("component", "mirror").Str("bucket", bucket).Logger(),
	}, nil
}

func (m *Mirror) key(league string) string {
	return path.Join(m.prefix, league+".json")
}

// Put uploads the league document. Failures are logged and swallowed.
func (m *Mirror) Put(ctx context.Context, league string, doc []byte) {
	key := m.key(league)
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &m.bucket,
		Key:         &key,
		Body:        bytes.NewReader(doc),
		ContentType: ptr("application/json"),
	})
	if err != nil {
		m.logger.Error().Err(err).Str("league", league).Msg("Failed to mirror league state")
		return
	}
	m.logger.Debug().Str("league", league).Msg("Mirrored league state")
}

// Get fetches the league document from the bucket.
func (m *Mirror) Get(ctx context.Context, league string) ([]byte, error) {
	key := m.key(league)
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &m.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching mirrored state for %s: %w", league, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func ptr(s string) *string {
	return &s
}
