package model

import (
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// MemoryMetadata is the metadata snapshot attached to a vector entry. It is
// a fixed tagged structure so that serialization and upsert-merge behavior
// stay well defined across backends.
type MemoryMetadata struct {
	UserID     string
	Tier       Tier
	Content    string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	Importance float64
	Source     string
}

// Metadata field keys on the vector-index wire. Timestamps travel as
// epoch milliseconds.
const (
	metaUserID     = "user_id"
	metaTier       = "tier"
	metaContent    = "content"
	metaCreatedAt  = "created_at"
	metaUpdatedAt  = "updated_at"
	metaImportance = "importance"
	metaSource     = "source"
)

// Encode serializes the metadata into the string key/value form used by the
// vector index. Optional fields are omitted when unset.
func (m MemoryMetadata) Encode() map[string]string {
	out := map[string]string{
		metaUserID:    m.UserID,
		metaTier:      string(m.Tier),
		metaContent:   m.Content,
		metaCreatedAt: strconv.FormatInt(m.CreatedAt.UnixMilli(), 10),
	}
	if m.UpdatedAt != nil {
		out[metaUpdatedAt] = strconv.FormatInt(m.UpdatedAt.UnixMilli(), 10)
	}
	if m.Importance != 0 {
		out[metaImportance] = strconv.FormatFloat(m.Importance, 'f', -1, 64)
	}
	if m.Source != "" {
		out[metaSource] = m.Source
	}
	return out
}

// DecodeMetadata parses the wire form back into a MemoryMetadata.
func DecodeMetadata(kv map[string]string) (MemoryMetadata, error) {
	meta := MemoryMetadata{
		UserID:  kv[metaUserID],
		Tier:    Tier(kv[metaTier]),
		Content: kv[metaContent],
		Source:  kv[metaSource],
	}

	createdMs, err := strconv.ParseInt(kv[metaCreatedAt], 10, 64)
	if err != nil {
		return MemoryMetadata{}, goerr.Wrap(err, "invalid created_at in vector metadata",
			goerr.V("created_at", kv[metaCreatedAt]))
	}
	meta.CreatedAt = time.UnixMilli(createdMs)

	if raw, ok := kv[metaUpdatedAt]; ok {
		updatedMs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return MemoryMetadata{}, goerr.Wrap(err, "invalid updated_at in vector metadata",
				goerr.V("updated_at", raw))
		}
		updated := time.UnixMilli(updatedMs)
		meta.UpdatedAt = &updated
	}

	if raw, ok := kv[metaImportance]; ok {
		importance, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return MemoryMetadata{}, goerr.Wrap(err, "invalid importance in vector metadata",
				goerr.V("importance", raw))
		}
		meta.Importance = importance
	}

	return meta, nil
}
