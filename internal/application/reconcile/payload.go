package reconcile

import "encoding/json"

// encodePayload serializes an external row for the failure log so the row
// can be replayed later. Serialization failures degrade to an empty payload
// rather than masking the original error.
func encodePayload(row any) string {
	data, err := json.Marshal(row)
	if err != nil {
		return ""
	}
	return string(data)
}
