package models

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
)

// ID is an identifier referenced from a request body. It is written as a JSON
// string and read from either a JSON number or a numeric string.
type ID int64

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(id), 10))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		raw = string(data[1 : len(data)-1])
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(*id)}
	}
	*id = ID(n)
	return nil
}
