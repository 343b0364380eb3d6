package codec

import (
	jsoniter "github.com/json-iterator/go"
)

// json honours MarshalJSON/UnmarshalJSON so decimal and date fields encode
// the same way as in HTTP responses.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal encodes a stored document.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a stored document.
func Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
