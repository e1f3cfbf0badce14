package models

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Context is the mutable state shared by every step and hook of a sequence.
// It is not synchronized: the runner invokes steps one at a time
type Context map[string]any

// NewContext returns an empty context
func NewContext() Context {
	return make(Context)
}

// Get returns the value stored under key
func (c Context) Get(key string) any {
	return c[key]
}

// Set stores value under key
func (c Context) Set(key string, value any) {
	c[key] = value
}

// Has reports whether key is present
func (c Context) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Delete removes key
func (c Context) Delete(key string) {
	delete(c, key)
}

// Clear removes every key, keeping the map identity
func (c Context) Clear() {
	for k := range c {
		delete(c, k)
	}
}

// Lookup resolves a gjson path (e.g. "user.address.city" or "items.#")
// against a JSON view of the context
func (c Context) Lookup(path string) (any, bool) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, false
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}
