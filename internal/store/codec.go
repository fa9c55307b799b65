package store

import "encoding/json"

type fieldKind int

const (
	kindArray fieldKind = iota
	kindObject
)

// structuredFields lists, per collection, the record fields whose values are
// sequences or maps. The record service only stores flat string cells, so
// these travel as serialized JSON strings and are re-parsed on every read.
var structuredFields = map[string]map[string]fieldKind{
	CollectionDevices: {
		"history":      kindArray,
		"customFields": kindObject,
	},
}

// encodeRecord returns a copy of rec with structured fields flattened to JSON
// strings, ready for transmission to the record service. Records of
// collections without structured fields pass through unchanged.
func encodeRecord(collection string, rec Record) Record {
	fields := structuredFields[collection]
	if len(fields) == 0 {
		return rec
	}

	out := rec.Clone()
	for name := range fields {
		value, ok := out[name]
		if !ok {
			continue
		}
		if _, isString := value.(string); isString {
			continue
		}
		data, err := json.Marshal(value)
		if err != nil {
			// Unmarshalable field values cannot come out of ToRecord;
			// drop the field rather than send garbage.
			delete(out, name)
			continue
		}
		out[name] = string(data)
	}
	return out
}

// decodeRecord parses structured fields back from their serialized string
// form. Malformed data decodes to an empty structure of the declared kind.
func decodeRecord(collection string, rec Record) Record {
	fields := structuredFields[collection]
	if len(fields) == 0 {
		return rec
	}

	out := rec.Clone()
	for name, kind := range fields {
		raw, ok := out[name].(string)
		if !ok {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			switch kind {
			case kindArray:
				if _, isArray := parsed.([]any); isArray {
					out[name] = parsed
					continue
				}
			case kindObject:
				if _, isObject := parsed.(map[string]any); isObject {
					out[name] = parsed
					continue
				}
			}
		}
		out[name] = emptyValue(kind)
	}
	return out
}

func decodeRecords(collection string, recs []Record) []Record {
	if len(structuredFields[collection]) == 0 {
		return recs
	}
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = decodeRecord(collection, rec)
	}
	return out
}

func emptyValue(kind fieldKind) any {
	if kind == kindObject {
		return map[string]any{}
	}
	return []any{}
}
