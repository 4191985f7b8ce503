package storage

import (
	"encoding/json"

	"github.com/notarium/core/pkg/types"
)

// These small, rarely-written sub-records (unlike UserAttributes,
// NoteAttributes, and ResourceAttributes) are not bitmask-coded; the
// deterministic codec in pkg/codec is reserved for the fields the
// design calls out for property testing. JSON round-trips these the
// same way the sqlite store this package is grounded on serializes
// its Export/Import payloads.

func encodePublishing(p *types.NotebookPublishing) []byte {
	if p == nil {
		return nil
	}
	b, _ := json.Marshal(p)
	return b
}

func decodePublishing(b []byte) *types.NotebookPublishing {
	if len(b) == 0 {
		return nil
	}
	var p types.NotebookPublishing
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	return &p
}

func encodeBusinessNotebook(b *types.BusinessNotebook) []byte {
	if b == nil {
		return nil
	}
	out, _ := json.Marshal(b)
	return out
}

func decodeBusinessNotebook(data []byte) *types.BusinessNotebook {
	if len(data) == 0 {
		return nil
	}
	var b types.BusinessNotebook
	if err := json.Unmarshal(data, &b); err != nil {
		return nil
	}
	return &b
}

func encodeAccounting(a *types.Accounting) []byte {
	if a == nil {
		return nil
	}
	b, _ := json.Marshal(a)
	return b
}

func decodeAccounting(b []byte) *types.Accounting {
	if len(b) == 0 {
		return nil
	}
	var a types.Accounting
	if err := json.Unmarshal(b, &a); err != nil {
		return nil
	}
	return &a
}

func encodePremiumInfo(p *types.PremiumInfo) []byte {
	if p == nil {
		return nil
	}
	b, _ := json.Marshal(p)
	return b
}

func decodePremiumInfo(b []byte) *types.PremiumInfo {
	if len(b) == 0 {
		return nil
	}
	var p types.PremiumInfo
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	return &p
}

func encodeBusinessUserInfo(b *types.BusinessUserInfo) []byte {
	if b == nil {
		return nil
	}
	out, _ := json.Marshal(b)
	return out
}

func decodeBusinessUserInfo(data []byte) *types.BusinessUserInfo {
	if len(data) == 0 {
		return nil
	}
	var b types.BusinessUserInfo
	if err := json.Unmarshal(data, &b); err != nil {
		return nil
	}
	return &b
}

func nullBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
