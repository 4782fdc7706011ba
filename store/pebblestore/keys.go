package pebblestore

import "encoding/binary"

// Keyspace:
//
//	list/{key}/m           - list metadata: head(8B BE) | tail(8B BE)
//	list/{key}/e/{seq_be8} - elements, lexicographically ordered by seq

// listMetaKey builds the metadata key for a list.
func listMetaKey(key string) []byte {
	b := make([]byte, 0, len(key)+8)
	b = append(b, "list/"...)
	b = append(b, key...)
	b = append(b, "/m"...)
	return b
}

// listEntryKey builds the element key for a sequence number.
func listEntryKey(key string, seq uint64) []byte {
	b := make([]byte, 0, len(key)+16)
	b = append(b, "list/"...)
	b = append(b, key...)
	b = append(b, "/e/"...)
	var s [8]byte
	binary.BigEndian.PutUint64(s[:], seq)
	return append(b, s[:]...)
}

// encodeListMeta packs head and tail into the stored form.
func encodeListMeta(head, tail uint64) []byte {
	var m [16]byte
	binary.BigEndian.PutUint64(m[0:8], head)
	binary.BigEndian.PutUint64(m[8:16], tail)
	return m[:]
}

// decodeListMeta unpacks head and tail; a short or missing value reads as an
// empty list.
func decodeListMeta(b []byte) (head, tail uint64) {
	if len(b) < 16 {
		return 0, 0
	}
	return binary.BigEndian.Uint64(b[0:8]), binary.BigEndian.Uint64(b[8:16])
}
