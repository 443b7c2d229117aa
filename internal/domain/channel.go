package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChannelTag names a channel a retailer used to share campaign assets.
type ChannelTag string

const (
	ChannelSocial       ChannelTag = "social"
	ChannelEmail        ChannelTag = "email"
	ChannelDownloadable ChannelTag = "downloadable"
)

// channelOrder fixes the iteration and serialization order of a ChannelSet.
var channelOrder = []ChannelTag{ChannelSocial, ChannelEmail, ChannelDownloadable}

// AllChannels returns every known channel tag in display order.
func AllChannels() []ChannelTag {
	return append([]ChannelTag(nil), channelOrder...)
}

// ChannelSet is a set of channel tags. The zero value is the empty set.
//
// Sources supply usage either as a list of tags or as the legacy
// boolean-flag object ({"social": true, "email": false}); both decode into
// a ChannelSet so nothing downstream branches on the input shape.
type ChannelSet uint8

func channelBit(tag ChannelTag) (ChannelSet, bool) {
	for i, t := range channelOrder {
		if t == tag {
			return 1 << i, true
		}
	}
	return 0, false
}

// ParseChannelTag matches a tag name case-insensitively.
func ParseChannelTag(s string) (ChannelTag, bool) {
	tag := ChannelTag(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := channelBit(tag); ok {
		return tag, true
	}
	return "", false
}

// NewChannelSet builds a set from tags. Unknown tags are ignored.
func NewChannelSet(tags ...ChannelTag) ChannelSet {
	var s ChannelSet
	for _, t := range tags {
		s = s.With(t)
	}
	return s
}

// With returns the set plus tag.
func (s ChannelSet) With(tag ChannelTag) ChannelSet {
	b, ok := channelBit(tag)
	if !ok {
		return s
	}
	return s | b
}

// Has reports whether tag is in the set.
func (s ChannelSet) Has(tag ChannelTag) bool {
	b, ok := channelBit(tag)
	return ok && s&b != 0
}

// IsEmpty reports whether the set has no tags.
func (s ChannelSet) IsEmpty() bool { return s == 0 }

// Len returns the number of tags in the set.
func (s ChannelSet) Len() int {
	n := 0
	for _, t := range channelOrder {
		if s.Has(t) {
			n++
		}
	}
	return n
}

// Tags returns the members in display order. Never nil.
func (s ChannelSet) Tags() []ChannelTag {
	out := make([]ChannelTag, 0, len(channelOrder))
	for _, t := range channelOrder {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s ChannelSet) String() string {
	tags := s.Tags()
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes the set as an array of tags.
func (s ChannelSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Tags())
}

// UnmarshalJSON accepts a tag array, a legacy flag object, or a comma list.
func (s *ChannelSet) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode usage: %w", err)
	}
	set, err := ParseUsage(raw)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// MarshalYAML encodes the set as a sequence of tags.
func (s ChannelSet) MarshalYAML() (any, error) {
	return s.Tags(), nil
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON.
func (s *ChannelSet) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("decode usage: %w", err)
	}
	set, err := ParseUsage(raw)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// ParseUsage converts a decoded usage value into a ChannelSet. Supported
// shapes: nil, a tag list, a boolean-flag map, or a comma-separated string.
// Unknown tag names are ignored; values of any other type are an error.
func ParseUsage(raw any) (ChannelSet, error) {
	var set ChannelSet
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case string:
		for _, part := range strings.Split(v, ",") {
			if tag, ok := ParseChannelTag(part); ok {
				set = set.With(tag)
			}
		}
	case []string:
		for _, item := range v {
			if tag, ok := ParseChannelTag(item); ok {
				set = set.With(tag)
			}
		}
	case []any:
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return 0, fmt.Errorf("usage: unexpected list item %T", item)
			}
			if tag, ok := ParseChannelTag(str); ok {
				set = set.With(tag)
			}
		}
	case map[string]bool:
		for name, on := range v {
			if tag, ok := ParseChannelTag(name); ok && on {
				set = set.With(tag)
			}
		}
	case map[string]any:
		for name, flag := range v {
			on, ok := flag.(bool)
			if !ok {
				return 0, fmt.Errorf("usage: flag %q is %T, want bool", name, flag)
			}
			if tag, ok := ParseChannelTag(name); ok && on {
				set = set.With(tag)
			}
		}
	default:
		return 0, fmt.Errorf("usage: unsupported shape %T", raw)
	}
	return set, nil
}
