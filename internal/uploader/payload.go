package uploader

import (
	"strings"

	"tripletuploader/internal/models"
)

// BuildPayload turns a record's business fields into the JSON body for one
// POST. The status never leaves the process. With nestKeys set, a key with
// an underscore is folded one level deep: "asset_id" becomes
// {"asset": {"id": ...}}; sibling keys sharing a prefix merge into the
// same nested object.
func BuildPayload(rec *models.Record, headers []string, nestKeys bool) map[string]any {
	payload := make(map[string]any, len(headers))
	for _, h := range headers {
		value := rec.Get(h)

		if nestKeys {
			if prefix, rest, ok := strings.Cut(h, "_"); ok && prefix != "" && rest != "" {
				nested, _ := payload[prefix].(map[string]any)
				if nested == nil {
					nested = make(map[string]any)
					payload[prefix] = nested
				}
				nested[rest] = value
				continue
			}
		}

		payload[h] = value
	}
	return payload
}
