package bson

import (
	"bytes"
	"encoding/binary"
	"github.com/pkg/errors"
	"io"
)

// ReadDocument reads one length-prefixed document from r. It returns io.EOF
// unchanged when r is exhausted before the first byte. The body is buffered
// as it arrives, so a bogus length prefix on a short stream does not cause a
// large allocation.
func (c *Codec) ReadDocument(r io.Reader) (*Document, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, decodef("truncated length prefix")
		}
		return nil, errors.Wrap(err, "error reading length prefix")
	}
	size, err := c.peekSize(prefix[:])
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(prefix[:])
	if _, err := io.CopyN(&buf, r, int64(size-len(prefix))); err != nil {
		if err == io.EOF {
			return nil, decodef("truncated document: declared %d bytes, read %d", size, buf.Len())
		}
		return nil, errors.Wrap(err, "error reading document body")
	}
	return c.Decode(buf.Bytes())
}

// WriteDocument encodes doc and writes it to w in a single call.
func (c *Codec) WriteDocument(w io.Writer, doc interface{}) error {
	b, err := c.Encode(doc)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return errors.Wrap(err, "error writing document")
	}
	return nil
}

// DocumentSize returns the declared length of the document at the start of
// b without decoding it.
func DocumentSize(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, decodef("buffer of %d bytes is too short for a length prefix", len(b))
	}
	return int(int32(binary.LittleEndian.Uint32(b))), nil
}
