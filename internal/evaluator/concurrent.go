package evaluator

import (
	"sort"
	"sync"
)

// ConcurrentDictionary is a string-keyed map safe for use from several
// goroutines. Values are stored mirrored and handed back as fresh copies.
type ConcurrentDictionary struct {
	mu sync.RWMutex
	m  map[string]SharedValue
}

func NewConcurrentDictionary() *ConcurrentDictionary {
	return &ConcurrentDictionary{m: make(map[string]SharedValue)}
}

// AddOrUpdate stores addValue when key is new and updateValue otherwise,
// returning whichever was stored.
func (d *ConcurrentDictionary) AddOrUpdate(key string, addValue, updateValue Value) Value {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.m[key]; ok {
		d.m[key] = ToShared(updateValue)
		return updateValue
	}
	d.m[key] = ToShared(addValue)
	return addValue
}

func (d *ConcurrentDictionary) TryAdd(key string, v Value) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.m[key]; ok {
		return false
	}
	d.m[key] = ToShared(v)
	return true
}

func (d *ConcurrentDictionary) TryGetValue(key string) (Value, bool) {
	d.mu.RLock()
	sv, ok := d.m[key]
	d.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return sv.ToValue(), true
}

func (d *ConcurrentDictionary) TryRemove(key string) (Value, bool) {
	d.mu.Lock()
	sv, ok := d.m[key]
	delete(d.m, key)
	d.mu.Unlock()
	if !ok {
		return nil, false
	}
	return sv.ToValue(), true
}

// GetOrAdd returns the existing value for key, or stores and returns v.
func (d *ConcurrentDictionary) GetOrAdd(key string, v Value) Value {
	d.mu.Lock()
	sv, ok := d.m[key]
	if !ok {
		d.m[key] = ToShared(v)
	}
	d.mu.Unlock()
	if ok {
		return sv.ToValue()
	}
	return v
}

func (d *ConcurrentDictionary) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.m)
}

func (d *ConcurrentDictionary) Clear() {
	d.mu.Lock()
	d.m = make(map[string]SharedValue)
	d.mu.Unlock()
}

func (d *ConcurrentDictionary) ContainsKey(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.m[key]
	return ok
}

// Keys returns the keys in sorted order.
func (d *ConcurrentDictionary) Keys() []string {
	d.mu.RLock()
	keys := make([]string, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	d.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

func (d *ConcurrentDictionary) entries() ([]string, []SharedValue) {
	d.mu.RLock()
	keys := make([]string, 0, len(d.m))
	for k := range d.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]SharedValue, len(keys))
	for i, k := range keys {
		vals[i] = d.m[k]
	}
	d.mu.RUnlock()
	return keys, vals
}

// Values returns fresh copies of the values, ordered by key.
func (d *ConcurrentDictionary) Values() []Value {
	_, vals := d.entries()
	out := make([]Value, len(vals))
	for i, sv := range vals {
		out[i] = sv.ToValue()
	}
	return out
}

// ToArray returns KeyValuePair objects ordered by key.
func (d *ConcurrentDictionary) ToArray() []Value {
	keys, vals := d.entries()
	out := make([]Value, len(keys))
	for i := range keys {
		out[i] = newKeyValuePair(&String{Value: keys[i]}, vals[i].ToValue())
	}
	return out
}

// ConcurrentQueue is a FIFO queue safe for use from several goroutines.
type ConcurrentQueue struct {
	mu    sync.Mutex
	items []SharedValue
}

func NewConcurrentQueue() *ConcurrentQueue { return &ConcurrentQueue{} }

func (q *ConcurrentQueue) Enqueue(v Value) {
	sv := ToShared(v)
	q.mu.Lock()
	q.items = append(q.items, sv)
	q.mu.Unlock()
}

func (q *ConcurrentQueue) TryDequeue() (Value, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return nil, false
	}
	sv := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	q.mu.Unlock()
	return sv.ToValue(), true
}

func (q *ConcurrentQueue) TryPeek() (Value, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return nil, false
	}
	sv := q.items[0]
	q.mu.Unlock()
	return sv.ToValue(), true
}

func (q *ConcurrentQueue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *ConcurrentQueue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// ToArray returns fresh copies, front first.
func (q *ConcurrentQueue) ToArray() []Value {
	q.mu.Lock()
	items := append([]SharedValue(nil), q.items...)
	q.mu.Unlock()
	out := make([]Value, len(items))
	for i, sv := range items {
		out[i] = sv.ToValue()
	}
	return out
}

// ConcurrentStack is a LIFO stack safe for use from several goroutines.
type ConcurrentStack struct {
	mu    sync.Mutex
	items []SharedValue
}

func NewConcurrentStack() *ConcurrentStack { return &ConcurrentStack{} }

func (s *ConcurrentStack) Push(v Value) {
	sv := ToShared(v)
	s.mu.Lock()
	s.items = append(s.items, sv)
	s.mu.Unlock()
}

func (s *ConcurrentStack) TryPop() (Value, bool) {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil, false
	}
	last := len(s.items) - 1
	sv := s.items[last]
	s.items[last] = nil
	s.items = s.items[:last]
	s.mu.Unlock()
	return sv.ToValue(), true
}

func (s *ConcurrentStack) TryPeek() (Value, bool) {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return nil, false
	}
	sv := s.items[len(s.items)-1]
	s.mu.Unlock()
	return sv.ToValue(), true
}

func (s *ConcurrentStack) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *ConcurrentStack) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// ToArray returns fresh copies, top first.
func (s *ConcurrentStack) ToArray() []Value {
	s.mu.Lock()
	items := append([]SharedValue(nil), s.items...)
	s.mu.Unlock()
	out := make([]Value, len(items))
	for i, sv := range items {
		out[len(items)-1-i] = sv.ToValue()
	}
	return out
}
