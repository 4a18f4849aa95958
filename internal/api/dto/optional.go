package dto

import "encoding/json"

// OptionalString distinguishes an absent JSON field from an explicit null,
// which matters for unassigning a ticket.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON marks the field as present and records the value; a JSON
// null yields Set true with a nil Value.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
