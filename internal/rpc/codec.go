// Package rpc holds the wire contract of the session service: request and
// response messages, the service descriptor and a typed client. Messages
// travel as JSON through a codec registered under the "json" content
// subtype, so no generated protobuf code is involved.
package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// ContentSubtype selects the JSON codec on both ends of a call.
const ContentSubtype = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string { return ContentSubtype }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
