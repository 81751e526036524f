package cart

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MigrateDoc upgrades a raw version-0 cart document to the current schema.
// Documents that cannot be decoded are returned unchanged; the migration is
// best-effort and never fails.
func MigrateDoc(raw []byte) []byte {
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return raw
	}
	migrated := MigrateV0(doc)
	out, err := json.Marshal(migrated)
	if err != nil {
		return raw
	}
	return out
}

// MigrateV0 upgrades a version-0 cart state: each line gains productId and
// variationId inferred from its colon-delimited id, the id is recomputed in
// canonical "<productId>:<variationId>" form, and count is recomputed from
// the line quantities. Entries that are not objects pass through unchanged.
// Running it on already-migrated state yields the same result.
func MigrateV0(doc map[string]interface{}) map[string]interface{} {
	items, ok := doc["items"].([]interface{})
	if !ok {
		return doc
	}

	upgraded := make([]interface{}, 0, len(items))
	count := 0
	for _, entry := range items {
		line, ok := entry.(map[string]interface{})
		if !ok {
			upgraded = append(upgraded, entry)
			continue
		}

		idString, _ := line["id"].(string)
		parts := strings.Split(idString, ":")

		productID, _ := line["productId"].(string)
		if strings.TrimSpace(productID) == "" {
			productID = parts[0]
		}
		variationID, _ := line["variationId"].(string)
		if strings.TrimSpace(variationID) == "" && len(parts) > 1 {
			variationID = parts[len(parts)-1]
		}

		var normalized string
		switch {
		case productID != "" && variationID != "":
			normalized = productID + ":" + variationID
		case idString != "":
			normalized = idString
		case productID != "":
			normalized = productID
		case variationID != "":
			normalized = variationID
		default:
			normalized = uuid.NewString()
		}

		next := make(map[string]interface{}, len(line)+2)
		for k, v := range line {
			next[k] = v
		}
		next["id"] = normalized
		if productID != "" {
			next["productId"] = productID
		}
		if variationID != "" {
			next["variationId"] = variationID
		}

		count += int(numberOf(line["qty"]))
		upgraded = append(upgraded, next)
	}

	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	out["items"] = upgraded
	out["count"] = count
	return out
}

func numberOf(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
