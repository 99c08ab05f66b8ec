package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/utils/safe"
)

// Service archives finished story documents to Cloud Storage
type Service interface {
	// SaveDocument writes the document as a text object and returns the
	// object path.
	SaveDocument(ctx context.Context, sessionID model.SessionID, doc *model.Document) (string, error)
	Close() error
}

// client implements Service interface
type client struct {
	gcs    *storage.Client
	bucket string
}

// New creates a new Cloud Storage service writing to the given bucket
func New(ctx context.Context, bucket string) (Service, error) {
	if bucket == "" {
		return nil, goerr.New("storage bucket is required")
	}

	gcs, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &client{
		gcs:    gcs,
		bucket: bucket,
	}, nil
}

func (c *client) SaveDocument(ctx context.Context, sessionID model.SessionID, doc *model.Document) (string, error) {
	objectPath := objectName(sessionID)

	w := c.gcs.Bucket(c.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"

	if _, err := w.Write([]byte(doc.Content)); err != nil {
		safe.Close(ctx, w)
		return "", goerr.Wrap(err, "failed to write document object",
			goerr.V("bucket", c.bucket), goerr.V("object", objectPath))
	}

	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize document object",
			goerr.V("bucket", c.bucket), goerr.V("object", objectPath))
	}

	return objectPath, nil
}

func (c *client) Close() error {
	return c.gcs.Close()
}

func objectName(sessionID model.SessionID) string {
	return fmt.Sprintf("stories/%s/story.txt", sessionID)
}
