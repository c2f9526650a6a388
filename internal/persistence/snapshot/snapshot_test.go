package snapshot

import (
	"errors"
	"reflect"
	"testing"
)

func sample() SnapshotV1 {
	return SnapshotV1{
		Overrides: []OverrideV1{
			{I: 1, J: 0, Taken: true},
			{I: 2, J: 0, Value: 4},
			{I: -7, J: 13, Value: 2},
		},
		Player: PlayerV1{Lat: 0.00015, Lng: 0.00005, Holding: 2},
		Mode:   "TRACK",
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	want := sample()
	b, err := Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want.Header.Version = formatVersion
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not a snapshot")); err == nil {
		t.Fatalf("garbage must not decode")
	}
}

type memKV struct {
	m       map[string][]byte
	failSet bool
}

func newMemKV() *memKV { return &memKV{m: map[string][]byte{}} }

func (k *memKV) Get(key string) ([]byte, bool, error) {
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Set(key string, value []byte) error {
	if k.failSet {
		return errors.New("disk full")
	}
	k.m[key] = value
	return nil
}

func (k *memKV) Remove(key string) error {
	delete(k.m, key)
	return nil
}

func TestStore_SaveLoadReset(t *testing.T) {
	kv := newMemKV()
	st := NewStore(kv)

	if _, err := st.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("empty store: %v", err)
	}

	if err := st.Save(sample()); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Mode != "TRACK" || got.Player.Holding != 2 || len(got.Overrides) != 3 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	if err := st.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := st.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("after reset: %v", err)
	}
}

func TestStore_MalformedIsNoSnapshot(t *testing.T) {
	kv := newMemKV()
	kv.m["snapshot"] = []byte{0x00, 0x01, 0x02}
	st := NewStore(kv)
	if _, err := st.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("malformed bytes must read as no snapshot, got %v", err)
	}
}

func TestStore_SaveFailureSurfaces(t *testing.T) {
	kv := newMemKV()
	kv.failSet = true
	st := NewStore(kv)
	if err := st.Save(sample()); err == nil {
		t.Fatalf("write failure must surface to the caller")
	}
}
