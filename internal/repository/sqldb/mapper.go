package sqldb

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/parlohq/parlo-backend/internal/domain"
)

// metadataCodec encodes entity metadata as a single JSON document per row.
// Decoding is deliberately lenient: an empty, NULL or malformed document
// becomes an empty map with a local warning, so metadata corruption never
// blocks access to the rest of an entity's fields.
type metadataCodec struct {
	log zerolog.Logger
}

func (c metadataCodec) encode(m domain.Metadata) ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (c metadataCodec) decode(raw []byte, entityType, id string) domain.Metadata {
	if len(raw) == 0 {
		return domain.Metadata{}
	}
	var m domain.Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		c.log.Warn().
			Err(err).
			Str("entity", entityType).
			Str("id", id).
			Msg("malformed metadata document, substituting empty")
		return domain.Metadata{}
	}
	if m == nil {
		return domain.Metadata{}
	}
	return m
}
