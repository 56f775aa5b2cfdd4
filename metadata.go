package curvecp

import "encoding/binary"

// MetadataEntry is one (key, value) pair exchanged during the handshake.
type MetadataEntry struct {
	Key   []byte
	Value []byte
}

// Metadata is an ordered list of handshake metadata entries.
type Metadata []MetadataEntry

// encodeMetadata serializes md as count(u8) || {keylen(u8) key
// valuelen(u16 BE) value}*. An empty list encodes to zero bytes: the
// handshake FSM uses a zero-length encoding as the signal that a side
// sent no metadata at all, so a present-but-empty count byte would be
// indistinguishable from "metadata present, empty" and break the
// no-metadata Ready-skipping rule.
func encodeMetadata(md Metadata) ([]byte, error) {
	if len(md) == 0 {
		return nil, nil
	}
	if len(md) > 255 {
		return nil, ErrMetadataTooLarge
	}
	size := 1
	for _, e := range md {
		if len(e.Key) > 255 || len(e.Value) > 65535 {
			return nil, ErrMetadataTooLarge
		}
		size += 1 + len(e.Key) + 2 + len(e.Value)
	}
	out := make([]byte, 0, size)
	out = append(out, byte(len(md)))
	for _, e := range md {
		out = append(out, byte(len(e.Key)))
		out = append(out, e.Key...)
		var vl [2]byte
		binary.BigEndian.PutUint16(vl[:], uint16(len(e.Value)))
		out = append(out, vl[:]...)
		out = append(out, e.Value...)
	}
	return out, nil
}

// decodeMetadata is the inverse of encodeMetadata. An empty slice decodes
// to an empty, non-nil list.
func decodeMetadata(b []byte) (Metadata, error) {
	if len(b) == 0 {
		return Metadata{}, nil
	}
	count := int(b[0])
	b = b[1:]
	md := make(Metadata, 0, count)
	for i := 0; i < count; i++ {
		if len(b) < 1 {
			return nil, ErrShortFrame
		}
		klen := int(b[0])
		b = b[1:]
		if len(b) < klen+2 {
			return nil, ErrShortFrame
		}
		key := append([]byte(nil), b[:klen]...)
		b = b[klen:]
		vlen := int(binary.BigEndian.Uint16(b[:2]))
		b = b[2:]
		if len(b) < vlen {
			return nil, ErrShortFrame
		}
		val := append([]byte(nil), b[:vlen]...)
		b = b[vlen:]
		md = append(md, MetadataEntry{Key: key, Value: val})
	}
	return md, nil
}
