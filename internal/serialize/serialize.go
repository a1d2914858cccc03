// Package serialize produces the canonical textual form of stamp-signing
// fields: each field is serialized as the JSON scalar value it
// would take in a JSON document — a UUID becomes a quoted string, a
// timestamp becomes a quoted RFC3339 string, an absent value becomes the
// literal null — and the caller joins the parts with "\n".
package serialize

import "encoding/json"

// Service is the canonical-form adapter: it serializes each field the way
// encoding/json would inside a larger document, so the signing plaintext
// matches what a client computes from its own JSON encoder.
type Service struct{}

// New constructs the canonical serializer.
func New() Service { return Service{} }

// Serialize renders a single value in its canonical scalar form. Marshal
// failures can't occur for the closed set of types this is called with
// (uuid.UUID, time.Time, *time.Time, nil) so a failure here is a
// programmer error, not a caller contract violation.
func (Service) Serialize(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic("serialize: unmarshalable stamp field: " + err.Error())
	}
	return string(b)
}

// Join concatenates canonical field forms with the wire-contract separator.
func Join(fields ...string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += "\n" + f
	}
	return out
}
