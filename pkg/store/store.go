// Package store persists exported scene documents so they can be shared
// by ID.
//
// Two backends are provided:
//   - [MemoryStore]: process-local, for development and tests
//   - [MongoStore]: MongoDB, for deployments with more than one server
//
// Both assign IDs with [github.com/google/uuid] and report unknown IDs as
// NOT_FOUND errors.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/layerscape/pkg/scene"
)

// Store is the interface for saved-scene backends.
type Store interface {
	// Save persists doc and returns its new ID.
	Save(ctx context.Context, doc scene.Document) (string, error)

	// Load returns the document saved under id.
	Load(ctx context.Context, id string) (Record, error)

	// Delete removes a saved document. Unknown IDs are NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// Close releases the backend's connections.
	Close() error
}

// Record is a saved document with its metadata.
type Record struct {
	ID        string         `json:"id" bson:"_id"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	Scene     scene.Document `json:"scene" bson:"scene"`
}

func newRecord(doc scene.Document) Record {
	return Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Scene:     doc,
	}
}
