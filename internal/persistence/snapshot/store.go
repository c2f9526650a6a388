package snapshot

import "fmt"

// KV is the durable-storage contract the store writes through.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

const defaultKey = "snapshot"

type Store struct {
	kv  KV
	key string
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv, key: defaultKey}
}

func (s *Store) Save(snap SnapshotV1) error {
	b, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.kv.Set(s.key, b); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load returns ErrNoSnapshot both when nothing was ever saved and when the
// stored bytes do not decode.
func (s *Store) Load() (SnapshotV1, error) {
	var snap SnapshotV1
	b, ok, err := s.kv.Get(s.key)
	if err != nil {
		return snap, fmt.Errorf("read snapshot: %w", err)
	}
	if !ok {
		return snap, ErrNoSnapshot
	}
	snap, err = Decode(b)
	if err != nil {
		return snap, fmt.Errorf("%w: %v", ErrNoSnapshot, err)
	}
	return snap, nil
}

func (s *Store) Reset() error {
	return s.kv.Remove(s.key)
}
