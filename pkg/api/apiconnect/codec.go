// Package apiconnect binds the jomsplit.v1 services to Connect handlers and
// clients. Messages are encoded with encoding/json under the "json" codec
// name, so the Connect protocol content type is application/json.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSON registers the codec on a handler, or selects it on a client.
// The constructors in this package apply it automatically.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSON()}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSON()}, opts...)
}
