package evaluator

import (
	"fmt"
	"strings"
)

// Array is a fixed-shape, 0-based sequence with value semantics.
type Array struct {
	Elements []Value
}

func (a *Array) Type() ValueType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var out strings.Builder
	out.WriteString("Array[")
	for i, el := range a.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(el.Inspect())
	}
	out.WriteString("]")
	return out.String()
}
func (a *Array) value() {}

// Collection is an ArrayList that doubles as a VB Collection: items may
// optionally be registered under a string key (stored lower-cased).
type Collection struct {
	Items []Value
	Keys  map[string]int
}

func NewCollection(items ...Value) *Collection {
	return &Collection{Items: items, Keys: make(map[string]int)}
}

func (c *Collection) Type() ValueType { return COLLECTION_OBJ }
func (c *Collection) Inspect() string { return fmt.Sprintf("Collection(Count=%d)", len(c.Items)) }
func (c *Collection) value()          {}

func (c *Collection) Add(v Value) int {
	c.Items = append(c.Items, v)
	return len(c.Items) - 1
}

func (c *Collection) AddWithKey(v Value, key string) (int, error) {
	k := strings.ToLower(key)
	if c.Keys == nil {
		c.Keys = make(map[string]int)
	}
	if _, dup := c.Keys[k]; dup {
		return 0, NewCustom("Argument 'Key' is not valid. Duplicate key: '%s'", key)
	}
	c.Items = append(c.Items, v)
	c.Keys[k] = len(c.Items) - 1
	return len(c.Items) - 1, nil
}

// Insert places v at index, shifting later items (and their keys) up.
func (c *Collection) Insert(index int, v Value) error {
	if index < 0 || index > len(c.Items) {
		return NewCustom("Index out of range: %d", index)
	}
	for k, idx := range c.Keys {
		if idx >= index {
			c.Keys[k] = idx + 1
		}
	}
	c.Items = append(c.Items, nil)
	copy(c.Items[index+1:], c.Items[index:])
	c.Items[index] = v
	return nil
}

// Remove deletes the first item identical to v. It is a no-op when absent.
func (c *Collection) Remove(v Value) {
	if idx := c.IndexOf(v); idx >= 0 {
		c.removeIndex(idx)
	}
}

func (c *Collection) RemoveByKey(key string) error {
	idx, ok := c.Keys[strings.ToLower(key)]
	if !ok {
		return NewCustom("Argument 'Key' is not valid. Key not found: '%s'", key)
	}
	c.removeIndex(idx)
	return nil
}

func (c *Collection) RemoveAt(index int) error {
	if index < 0 || index >= len(c.Items) {
		return NewCustom("Index out of range: %d", index)
	}
	c.removeIndex(index)
	return nil
}

func (c *Collection) removeIndex(index int) {
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	for k, idx := range c.Keys {
		switch {
		case idx == index:
			delete(c.Keys, k)
		case idx > index:
			c.Keys[k] = idx - 1
		}
	}
}

func (c *Collection) Clear() {
	c.Items = nil
	c.Keys = make(map[string]int)
}

func (c *Collection) Count() int { return len(c.Items) }

func (c *Collection) Item(index int) (Value, error) {
	if index < 0 || index >= len(c.Items) {
		return nil, NewCustom("Index out of range: %d", index)
	}
	return c.Items[index], nil
}

func (c *Collection) ItemByKey(key string) (Value, error) {
	idx, ok := c.Keys[strings.ToLower(key)]
	if !ok {
		return nil, NewCustom("Argument 'Index' is not valid. Key not found: '%s'", key)
	}
	if idx >= len(c.Items) {
		return nil, NewCustom("Key index out of range: '%s' -> %d", key, idx)
	}
	return c.Items[idx], nil
}

func (c *Collection) SetItem(index int, v Value) error {
	if index < 0 || index >= len(c.Items) {
		return NewCustom("Index out of range: %d", index)
	}
	c.Items[index] = v
	return nil
}

func (c *Collection) ContainsKey(key string) bool {
	_, ok := c.Keys[strings.ToLower(key)]
	return ok
}

func (c *Collection) Contains(v Value) bool { return c.IndexOf(v) >= 0 }

// IndexOf returns the position of the first item identical to v, or -1.
func (c *Collection) IndexOf(v Value) int {
	for i, item := range c.Items {
		if Identical(item, v) {
			return i
		}
	}
	return -1
}

// Queue is a FIFO queue; Items[0] is the front.
type Queue struct {
	Items []Value
}

func (q *Queue) Type() ValueType { return QUEUE_OBJ }
func (q *Queue) Inspect() string { return fmt.Sprintf("Queue(Count=%d)", len(q.Items)) }
func (q *Queue) value()          {}

func (q *Queue) Enqueue(v Value) { q.Items = append(q.Items, v) }

func (q *Queue) Dequeue() (Value, error) {
	if len(q.Items) == 0 {
		return nil, NewCustom("Queue is empty")
	}
	v := q.Items[0]
	q.Items[0] = nil
	q.Items = q.Items[1:]
	return v, nil
}

func (q *Queue) Peek() (Value, error) {
	if len(q.Items) == 0 {
		return nil, NewCustom("Queue is empty")
	}
	return q.Items[0], nil
}

func (q *Queue) Count() int            { return len(q.Items) }
func (q *Queue) Clear()                { q.Items = nil }
func (q *Queue) Contains(v Value) bool { return indexIdentical(q.Items, v) >= 0 }
func (q *Queue) ToArray() []Value      { return append([]Value(nil), q.Items...) }

// Stack is a LIFO stack; the top is the last element of Items.
type Stack struct {
	Items []Value
}

func (s *Stack) Type() ValueType { return STACK_OBJ }
func (s *Stack) Inspect() string { return fmt.Sprintf("Stack(Count=%d)", len(s.Items)) }
func (s *Stack) value()          {}

func (s *Stack) Push(v Value) { s.Items = append(s.Items, v) }

func (s *Stack) Pop() (Value, error) {
	if len(s.Items) == 0 {
		return nil, NewCustom("Stack is empty")
	}
	last := len(s.Items) - 1
	v := s.Items[last]
	s.Items[last] = nil
	s.Items = s.Items[:last]
	return v, nil
}

func (s *Stack) Peek() (Value, error) {
	if len(s.Items) == 0 {
		return nil, NewCustom("Stack is empty")
	}
	return s.Items[len(s.Items)-1], nil
}

func (s *Stack) Count() int            { return len(s.Items) }
func (s *Stack) Clear()                { s.Items = nil }
func (s *Stack) Contains(v Value) bool { return indexIdentical(s.Items, v) >= 0 }

// ToArray returns the items top first.
func (s *Stack) ToArray() []Value {
	out := make([]Value, len(s.Items))
	for i, v := range s.Items {
		out[len(s.Items)-1-i] = v
	}
	return out
}

// HashSet keeps unique items in insertion order.
type HashSet struct {
	Items []Value
}

func (h *HashSet) Type() ValueType { return HASHSET_OBJ }
func (h *HashSet) Inspect() string { return fmt.Sprintf("HashSet(Count=%d)", len(h.Items)) }
func (h *HashSet) value()          {}

// Add inserts v and reports whether it was not already present.
func (h *HashSet) Add(v Value) bool {
	if h.Contains(v) {
		return false
	}
	h.Items = append(h.Items, v)
	return true
}

func (h *HashSet) Remove(v Value) bool {
	idx := indexIdentical(h.Items, v)
	if idx < 0 {
		return false
	}
	h.Items = append(h.Items[:idx], h.Items[idx+1:]...)
	return true
}

func (h *HashSet) Contains(v Value) bool { return indexIdentical(h.Items, v) >= 0 }
func (h *HashSet) Count() int            { return len(h.Items) }
func (h *HashSet) Clear()                { h.Items = nil }
func (h *HashSet) ToArray() []Value      { return append([]Value(nil), h.Items...) }

// Dictionary is an insertion-ordered map from any Value to a Value.
// String keys match case-insensitively; other keys must be Identical.
type Dictionary struct {
	keys   []Value
	values []Value
}

func NewDictionary() *Dictionary { return &Dictionary{} }

// NewDictionaryFromParts builds a dictionary from parallel key/value slices.
func NewDictionaryFromParts(keys, values []Value) *Dictionary {
	return &Dictionary{keys: keys, values: values}
}

func (d *Dictionary) Type() ValueType { return DICTIONARY_OBJ }
func (d *Dictionary) Inspect() string { return fmt.Sprintf("Dictionary(Count=%d)", len(d.keys)) }
func (d *Dictionary) value()          {}

func (d *Dictionary) find(key Value) int {
	for i, k := range d.keys {
		if dictionaryKeysEqual(k, key) {
			return i
		}
	}
	return -1
}

func dictionaryKeysEqual(a, b Value) bool {
	if sa, ok := a.(*String); ok {
		if sb, ok := b.(*String); ok {
			return equalFoldASCII(sa.Value, sb.Value)
		}
	}
	return Identical(a, b)
}

func (d *Dictionary) Add(key, v Value) error {
	if d.find(key) >= 0 {
		return NewCustom("An item with the same key has already been added: %s", AsString(key))
	}
	d.keys = append(d.keys, key)
	d.values = append(d.values, v)
	return nil
}

func (d *Dictionary) Item(key Value) (Value, error) {
	idx := d.find(key)
	if idx < 0 {
		return nil, NewCustom("The given key was not present in the dictionary: %s", AsString(key))
	}
	return d.values[idx], nil
}

// SetItem updates the value for key, adding the key when it is new.
func (d *Dictionary) SetItem(key, v Value) {
	if idx := d.find(key); idx >= 0 {
		d.values[idx] = v
		return
	}
	d.keys = append(d.keys, key)
	d.values = append(d.values, v)
}

func (d *Dictionary) ContainsKey(key Value) bool { return d.find(key) >= 0 }

func (d *Dictionary) ContainsValue(v Value) bool { return indexIdentical(d.values, v) >= 0 }

func (d *Dictionary) Remove(key Value) bool {
	idx := d.find(key)
	if idx < 0 {
		return false
	}
	d.keys = append(d.keys[:idx], d.keys[idx+1:]...)
	d.values = append(d.values[:idx], d.values[idx+1:]...)
	return true
}

func (d *Dictionary) Count() int { return len(d.keys) }

func (d *Dictionary) Clear() {
	d.keys = nil
	d.values = nil
}

func (d *Dictionary) Keys() []Value   { return append([]Value(nil), d.keys...) }
func (d *Dictionary) Values() []Value { return append([]Value(nil), d.values...) }

func indexIdentical(items []Value, v Value) int {
	for i, item := range items {
		if Identical(item, v) {
			return i
		}
	}
	return -1
}
