package receipt

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const (
	usersCollection  = "users"
	emailsCollection = "user_emails"
	receiptsSegment  = "receipts"
	profileKey       = "profile"
)

// DB defines the interface for database operations
type DB interface {
	// SaveUser saves a user and indexes it by email
	SaveUser(user *User) error

	// GetUser retrieves a user by ID
	GetUser(id string) (*User, error)

	// GetUserByEmail retrieves a user by email address
	GetUserByEmail(email string) (*User, error)

	// SaveReceipt saves a receipt under its user
	SaveReceipt(receipt *Receipt) error

	// GetReceipt retrieves one of a user's receipts
	GetReceipt(userID, id string) (*Receipt, error)

	// ListReceipts returns a user's receipts, newest first. limit <= 0 returns all.
	ListReceipts(userID string, limit int) ([]*Receipt, error)

	// DeleteReceipt removes one of a user's receipts
	DeleteReceipt(userID, id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface as a document store on BoltDB.
// A document path such as users/{uid}/receipts/{rid} maps to nested buckets
// users -> {uid} -> receipts holding the key {rid}.
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{usersCollection, emailsCollection} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// docPath joins path segments, escaping any slashes inside them
func docPath(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

// splitPath separates a document path into its bucket chain and key
func splitPath(path string) ([]string, string, error) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return nil, "", fmt.Errorf("invalid document path %q", path)
	}
	for _, s := range segments {
		if s == "" {
			return nil, "", fmt.Errorf("invalid document path %q", path)
		}
	}
	return segments[:len(segments)-1], segments[len(segments)-1], nil
}

func createBuckets(tx *bbolt.Tx, names []string) (*bbolt.Bucket, error) {
	bucket, err := tx.CreateBucketIfNotExists([]byte(names[0]))
	if err != nil {
		return nil, err
	}
	for _, name := range names[1:] {
		if bucket, err = bucket.CreateBucketIfNotExists([]byte(name)); err != nil {
			return nil, err
		}
	}
	return bucket, nil
}

// lookupBuckets returns nil when any bucket on the chain is missing
func lookupBuckets(tx *bbolt.Tx, names []string) *bbolt.Bucket {
	bucket := tx.Bucket([]byte(names[0]))
	for _, name := range names[1:] {
		if bucket == nil {
			return nil
		}
		bucket = bucket.Bucket([]byte(name))
	}
	return bucket
}

func putDoc(tx *bbolt.Tx, path string, v any) error {
	buckets, key, err := splitPath(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	bucket, err := createBuckets(tx, buckets)
	if err != nil {
		return fmt.Errorf("creating buckets for %s: %w", path, err)
	}
	return bucket.Put([]byte(key), data)
}

// setDoc writes v as JSON at path, creating buckets as needed
func (b *BoltDB) setDoc(path string, v any) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return putDoc(tx, path, v)
	})
}

// getDoc reads the JSON document at path into v
func (b *BoltDB) getDoc(path string, v any) error {
	buckets, key, err := splitPath(path)
	if err != nil {
		return err
	}
	return b.db.View(func(tx *bbolt.Tx) error {
		bucket := lookupBuckets(tx, buckets)
		if bucket == nil {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return json.Unmarshal(data, v)
	})
}

// deleteDoc removes the document at path
func (b *BoltDB) deleteDoc(path string) error {
	buckets, key, err := splitPath(path)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := lookupBuckets(tx, buckets)
		if bucket == nil || bucket.Get([]byte(key)) == nil {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return bucket.Delete([]byte(key))
	})
}

// queryDocs calls fn with every document directly inside collection.
// A collection that was never written holds no documents.
func (b *BoltDB) queryDocs(collection string, fn func(key string, data []byte) error) error {
	names := strings.Split(collection, "/")
	return b.db.View(func(tx *bbolt.Tx) error {
		bucket := lookupBuckets(tx, names)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			if v == nil {
				return nil // nested bucket
			}
			return fn(string(k), v)
		})
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SaveUser saves a user profile and its email index in one transaction
func (b *BoltDB) SaveUser(user *User) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := putDoc(tx, docPath(usersCollection, user.ID, profileKey), user); err != nil {
			return err
		}
		return putDoc(tx, docPath(emailsCollection, normalizeEmail(user.Email)), user.ID)
	})
}

// GetUser retrieves a user by ID
func (b *BoltDB) GetUser(id string) (*User, error) {
	var user User
	if err := b.getDoc(docPath(usersCollection, id, profileKey), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func (b *BoltDB) GetUserByEmail(email string) (*User, error) {
	var id string
	if err := b.getDoc(docPath(emailsCollection, normalizeEmail(email)), &id); err != nil {
		return nil, err
	}
	return b.GetUser(id)
}

// SaveReceipt saves a receipt under its user
func (b *BoltDB) SaveReceipt(receipt *Receipt) error {
	if receipt.UserID == "" {
		return errors.New("receipt has no user")
	}
	return b.setDoc(docPath(usersCollection, receipt.UserID, receiptsSegment, receipt.ID), receipt)
}

// GetReceipt retrieves one of a user's receipts
func (b *BoltDB) GetReceipt(userID, id string) (*Receipt, error) {
	var receipt Receipt
	if err := b.getDoc(docPath(usersCollection, userID, receiptsSegment, id), &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ListReceipts returns a user's receipts, newest first
func (b *BoltDB) ListReceipts(userID string, limit int) ([]*Receipt, error) {
	receipts := make([]*Receipt, 0)
	err := b.queryDocs(docPath(usersCollection, userID, receiptsSegment), func(key string, data []byte) error {
		var receipt Receipt
		if err := json.Unmarshal(data, &receipt); err != nil {
			return fmt.Errorf("unmarshaling receipt %s: %w", key, err)
		}
		receipts = append(receipts, &receipt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(receipts, func(i, j int) bool {
		if receipts[i].Timestamp.Equal(receipts[j].Timestamp) {
			return receipts[i].ID > receipts[j].ID
		}
		return receipts[i].Timestamp.After(receipts[j].Timestamp)
	})
	if limit > 0 && len(receipts) > limit {
		receipts = receipts[:limit]
	}
	return receipts, nil
}

// DeleteReceipt removes one of a user's receipts
func (b *BoltDB) DeleteReceipt(userID, id string) error {
	return b.deleteDoc(docPath(usersCollection, userID, receiptsSegment, id))
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
