package rbcast

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jabolina/reliable-broadcast/pkg/rbcast/types"
)

// ErrFrameTooLarge is returned by DecodeFrame when the varint length prefix
// exceeds MaxFrameSize, per spec.md section 6.1.
var ErrFrameTooLarge = fmt.Errorf("frame exceeds maximum size of %d bytes", types.MaxFrameSize)

// EncodeFrame writes msg to w as an unsigned varint length prefix followed
// by its deterministic JSON body encoding.
func EncodeFrame(w io.Writer, msg types.ReliableBroadcastMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if len(body) > types.MaxFrameSize {
		return ErrFrameTooLarge
	}

	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(body)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}

// DecodeFrame reads one length-prefixed frame from r. A malformed frame
// never panics; it is the caller's responsibility to translate a decode
// error into UnknownBroadcastError at the dispatch boundary.
func DecodeFrame(r io.Reader) (types.ReliableBroadcastMessage, error) {
	var msg types.ReliableBroadcastMessage

	br, ok := r.(io.ByteReader)
	if !ok {
		br = &byteReaderAdapter{r: r}
	}

	length, err := binary.ReadUvarint(br)
	if err != nil {
		return msg, fmt.Errorf("read frame length: %w", err)
	}
	if length > uint64(types.MaxFrameSize) {
		return msg, ErrFrameTooLarge
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return msg, fmt.Errorf("read frame body: %w", err)
	}

	if err := json.Unmarshal(body, &msg); err != nil {
		return msg, fmt.Errorf("decode frame body: %w", err)
	}
	return msg, nil
}

// byteReaderAdapter wraps an io.Reader that does not implement
// io.ByteReader so binary.ReadUvarint can still consume it one byte at a
// time.
type byteReaderAdapter struct {
	r io.Reader
}

func (b *byteReaderAdapter) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
