// Package snapshot defines the durable form of all mutable game state and a
// store that reads/writes it through a key/value backend. Only player-caused
// state is ever written: overrides, the player, and the active movement mode.
// Intrinsic field values are regenerated, never persisted.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ErrNoSnapshot is returned by Load when no usable snapshot exists, whether
// the key is absent or the stored bytes are malformed. Callers fall back to
// the default initial state.
var ErrNoSnapshot = errors.New("no snapshot")

const formatVersion = 1

type Header struct {
	Version int `json:"version"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Overrides []OverrideV1 `json:"overrides"`
	Player    PlayerV1     `json:"player"`
	Mode      string       `json:"mode"`
}

type OverrideV1 struct {
	I     int   `json:"i"`
	J     int   `json:"j"`
	Taken bool  `json:"taken"`
	Value int64 `json:"value,omitempty"`
}

type PlayerV1 struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Holding int64   `json:"holding"`
}

// Encode renders a snapshot as a zstd frame holding a JSON header line
// followed by the gob body.
func Encode(snap SnapshotV1) ([]byte, error) {
	snap.Header.Version = formatVersion

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(enc)
	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return nil, err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return nil, err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode is the inverse of Encode. Any corruption is reported as an error;
// a snapshot is never partially applied.
func Decode(b []byte) (SnapshotV1, error) {
	var snap SnapshotV1
	dec, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)

	// Header line duplicates what gob carries; skip it.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
