package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeRLE encodes a sequence of cell values into base64(varint pairs).
// The pairs are (value, run_len) repeated. Most of the field is empty, so
// view windows compress to a handful of bytes.
func EncodeRLE(values []int64) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(values) {
		v := values[i]
		run := 1
		for j := i + 1; j < len(values) && values[j] == v && run < 1<<31; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(v))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func DecodeRLE(b64 string) ([]int64, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []int64
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("cell value too large: %d", v)
		}
		for k := 0; k < int(run); k++ {
			out = append(out, int64(v))
		}
	}
	return out, nil
}
