// Package history models the opaque turn history exchanged with the agent
// pipeline and the trimming policy that bounds its length.
package history

import "encoding/json"

// Item is a single turn entry. Entries come back from the agent runtime as
// arbitrary key/value payloads; the core never inspects them beyond the
// optional call_id correlation field, so no fixed schema is assumed.
type Item map[string]any

// Items is an ordered turn history, oldest first.
type Items []Item

// callIDKey links a tool-call item to its corresponding output item.
// Linked items must always be trimmed together.
const callIDKey = "call_id"

// CallID returns the item's correlation identifier, or "" if absent.
func (it Item) CallID() string {
	v, ok := it[callIDKey]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// NewUserTurn builds the user-role item appended for each inbound turn.
func NewUserTurn(content string) Item {
	return Item{"role": "user", "content": content}
}

// Trim enforces the history bound before a new turn is appended. While the
// history holds max or more items it removes the oldest one and, if that
// item carries a call_id, every remaining item sharing it: a call and its
// output are never split across the cut. Surviving items keep their order.
// Dropping correlated siblings can land the result below max-1; that is
// expected. A max of zero or less empties the history.
func Trim(items Items, max int) Items {
	if max <= 0 {
		return Items{}
	}
	out := make(Items, len(items))
	copy(out, items)

	for len(out) >= max {
		oldest := out[0]
		out = out[1:]

		id := oldest.CallID()
		if id == "" {
			continue
		}
		kept := out[:0]
		for _, it := range out {
			if it.CallID() == id {
				continue
			}
			kept = append(kept, it)
		}
		out = kept
	}
	return out
}

// Encode serializes a history for storage.
func Encode(items Items) ([]byte, error) {
	if items == nil {
		items = Items{}
	}
	return json.Marshal(items)
}

// Decode deserializes a stored history blob.
func Decode(data []byte) (Items, error) {
	var items Items
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
