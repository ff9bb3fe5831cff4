package activity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when an activity name is not in a Collection.
var ErrNotFound = errors.New("activity not found")

// Collection is an ordered snapshot of activities keyed by name.
// The zero value is an empty collection.
type Collection struct {
	items []Activity
	index map[string]int
}

// NewCollection builds a collection from activities in the given order.
// A repeated name replaces the earlier entry in place.
func NewCollection(activities ...Activity) Collection {
	var c Collection
	for _, a := range activities {
		c.put(a)
	}
	return c
}

func (c *Collection) put(a Activity) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if a.Participants == nil {
		a.Participants = []string{}
	}
	if i, ok := c.index[a.Name]; ok {
		c.items[i] = a
		return
	}
	c.index[a.Name] = len(c.items)
	c.items = append(c.items, a)
}

// Len returns the number of activities.
func (c Collection) Len() int {
	return len(c.items)
}

// All returns a copy of the activities in server order.
func (c Collection) All() []Activity {
	result := make([]Activity, len(c.items))
	copy(result, c.items)
	return result
}

// Names returns the activity names in server order.
func (c Collection) Names() []string {
	names := make([]string, len(c.items))
	for i, a := range c.items {
		names[i] = a.Name
	}
	return names
}

// Get returns the named activity or ErrNotFound.
func (c Collection) Get(name string) (Activity, error) {
	i, ok := c.index[name]
	if !ok {
		return Activity{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c.items[i], nil
}

// UnmarshalJSON decodes a JSON object of name -> activity, keeping key order.
func (c *Collection) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading collection: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("collection must be a JSON object, got %v", tok)
	}

	*c = Collection{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading activity name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var a Activity
		if err := dec.Decode(&a); err != nil {
			return fmt.Errorf("decoding activity %q: %w", name, err)
		}
		a.Name = name
		c.put(a)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading end of collection: %w", err)
	}
	return nil
}

// MarshalJSON encodes the collection as a JSON object in server order.
func (c Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range c.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
