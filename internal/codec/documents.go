package codec

import (
	"encoding/json"
	"strings"
)

// ColDocumentIDs is the TEXT column holding a JSON array of document ids
// on every log table that links evidence.
const ColDocumentIDs = "document_ids"

// DecodeDocumentIDs reads a document_ids column.  NULL, empty and
// malformed values all decode to an empty, non-nil list.
func DecodeDocumentIDs(v any) []int64 {
	out := []int64{}
	s, ok := asString(v)
	if !ok {
		return out
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return out
	}
	for _, item := range raw {
		if id, err := ParseID(item); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// EncodeDocumentIDs returns the value to store in a document_ids column:
// NULL for an empty list, otherwise the JSON array text.
func EncodeDocumentIDs(ids []int64) any {
	if len(ids) == 0 {
		return nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil
	}
	return string(b)
}
