package models

import (
	"encoding/json"
	"errors"
)

// Tags is a JSON-encoded array of strings. Clients may send either the
// encoded string or a plain array; both decode to the encoded form, which
// is what gets stored and returned.
type Tags string

var errTagsFormat = errors.New("tags must be a string or an array of strings")

// NewTags encodes a tag list
func NewTags(tags []string) Tags {
	if tags == nil {
		tags = []string{}
	}
	data, _ := json.Marshal(tags)
	return Tags(data)
}

// UnmarshalJSON accepts `"[\"a\"]"` as well as `["a"]`
func (t *Tags) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Tags(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errTagsFormat
	}
	*t = NewTags(list)
	return nil
}

// List decodes the tags. Values that are not a JSON array yield nil.
func (t Tags) List() []string {
	var list []string
	if err := json.Unmarshal([]byte(t), &list); err != nil {
		return nil
	}
	return list
}
