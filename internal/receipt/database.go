package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.etcd.io/bbolt"
)

const bucketName = "receipts"

// ErrNotFound is returned when an archived receipt does not exist
var ErrNotFound = errors.New("receipt not found")

// DB defines the interface for the receipt archive
type DB interface {
	// SaveReceipt stores an archived receipt
	SaveReceipt(receipt *ArchivedReceipt) error

	// GetReceipt retrieves an archived receipt by ID
	GetReceipt(id string) (*ArchivedReceipt, error)

	// ListReceipts returns all archived receipts, newest first
	ListReceipts() ([]*ArchivedReceipt, error)

	// DeleteReceipt removes an archived receipt
	DeleteReceipt(id string) error
}

// BoltDB implements DB on a shared bbolt database
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates the receipts bucket if needed. The caller owns db and
// closes it.
func NewBoltDB(db *bbolt.DB) (*BoltDB, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveReceipt stores an archived receipt under its ID
func (b *BoltDB) SaveReceipt(receipt *ArchivedReceipt) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data, err := json.Marshal(receipt)
		if err != nil {
			return fmt.Errorf("marshaling receipt: %w", err)
		}
		return bucket.Put([]byte(receipt.ID), data)
	})
}

// GetReceipt retrieves an archived receipt by ID
func (b *BoltDB) GetReceipt(id string) (*ArchivedReceipt, error) {
	var receipt *ArchivedReceipt
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &receipt)
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// ListReceipts returns all archived receipts, newest first
func (b *BoltDB) ListReceipts() ([]*ArchivedReceipt, error) {
	receipts := make([]*ArchivedReceipt, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var receipt ArchivedReceipt
			if err := json.Unmarshal(v, &receipt); err != nil {
				return fmt.Errorf("unmarshaling receipt: %w", err)
			}
			receipts = append(receipts, &receipt)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(receipts, func(a, b *ArchivedReceipt) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return receipts, nil
}

// DeleteReceipt removes an archived receipt
func (b *BoltDB) DeleteReceipt(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}
