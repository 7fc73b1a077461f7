// registry.go - Client registry sources (text file, MongoDB, in-memory)

package matcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/troncalnet/receipt_bot_whatsapp/internal/models"
)

// Registry is the client reference data the matcher searches
type Registry interface {
	All(ctx context.Context) ([]models.ClientRecord, error)
	// FindByID reports ok=false when no client has that id
	FindByID(ctx context.Context, id string) (models.ClientRecord, bool, error)
}

// ParseClientLine splits an "id;name" registry line on the first ';'.
// Lines with an empty id or name are rejected.
func ParseClientLine(line string) (models.ClientRecord, bool) {
	id, name, found := strings.Cut(strings.TrimSpace(line), ";")
	if !found {
		return models.ClientRecord{}, false
	}
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	if id == "" || name == "" {
		return models.ClientRecord{}, false
	}
	return models.ClientRecord{ID: id, Name: name}, true
}

// FileRegistry reads base_clientes.txt style files on every call,
// so edits to the file are picked up without a restart.
type FileRegistry struct {
	Path string
}

// NewFileRegistry creates a registry backed by the file at path
func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{Path: path}
}

// All returns every valid line of the file in file order
func (r *FileRegistry) All(ctx context.Context) ([]models.ClientRecord, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open client registry: %w", err)
	}
	defer f.Close()

	var records []models.ClientRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if rec, ok := ParseClientLine(scanner.Text()); ok {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read client registry: %w", err)
	}
	return records, nil
}

// FindByID scans the file for an exact id
func (r *FileRegistry) FindByID(ctx context.Context, id string) (models.ClientRecord, bool, error) {
	records, err := r.All(ctx)
	if err != nil {
		return models.ClientRecord{}, false, err
	}
	return SliceRegistry(records).find(id)
}

// SliceRegistry is a fixed in-memory registry
type SliceRegistry []models.ClientRecord

// All returns the records
func (r SliceRegistry) All(ctx context.Context) ([]models.ClientRecord, error) {
	return r, nil
}

// FindByID returns the first record with id
func (r SliceRegistry) FindByID(ctx context.Context, id string) (models.ClientRecord, bool, error) {
	return r.find(id)
}

func (r SliceRegistry) find(id string) (models.ClientRecord, bool, error) {
	for _, rec := range r {
		if rec.ID == id {
			return rec, true, nil
		}
	}
	return models.ClientRecord{}, false, nil
}

// MongoRegistry reads clients from a collection of {_id: cedula, name: nombre}
type MongoRegistry struct {
	coll *mongo.Collection
}

// NewMongoRegistry wraps the clients collection
func NewMongoRegistry(coll *mongo.Collection) *MongoRegistry {
	return &MongoRegistry{coll: coll}
}

// All loads every client sorted by id
func (r *MongoRegistry) All(ctx context.Context) ([]models.ClientRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.ClientRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode clients: %w", err)
	}
	return records, nil
}

// FindByID looks a single client up by _id
func (r *MongoRegistry) FindByID(ctx context.Context, id string) (models.ClientRecord, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rec models.ClientRecord
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ClientRecord{}, false, nil
	}
	if err != nil {
		return models.ClientRecord{}, false, fmt.Errorf("failed to find client: %w", err)
	}
	return rec, true, nil
}
