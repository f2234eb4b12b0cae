// Package users resolves maintainer and author strings from package
// definitions against a directory of known users.
package users

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Error values for consistent error handling by callers.
var (
	ErrInvalidUser = errors.New("invalid user")
)

// User identifies a package maintainer or author. A user resolved from the
// directory carries a handle and profile URL; a fallback user carries only
// what could be recovered from the raw definition string.
type User struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Handle string `json:"handle,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Directory looks up known users by name.
type Directory interface {
	// FindByName returns the user with the given name, if known.
	FindByName(name string) (User, bool)
}

// InMemoryDirectory stores users in memory.
type InMemoryDirectory struct {
	mu     sync.RWMutex
	byName map[string]User
}

// NewInMemoryDirectory creates an empty user directory.
func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		byName: make(map[string]User),
	}
}

// Add registers a user in the directory, replacing any previous entry with
// the same name.
func (d *InMemoryDirectory) Add(u User) error {
	if u.Name == "" {
		return ErrInvalidUser
	}

	d.mu.Lock()
	d.byName[u.Name] = u
	d.mu.Unlock()

	return nil
}

// FindByName returns the user with the given name, if known.
func (d *InMemoryDirectory) FindByName(name string) (User, bool) {
	if name == "" {
		return User{}, false
	}

	d.mu.RLock()
	u, ok := d.byName[name]
	d.mu.RUnlock()

	return u, ok
}

// List returns all known users in stable order.
func (d *InMemoryDirectory) List() []User {
	d.mu.RLock()
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	d.mu.RUnlock()

	sort.Strings(names)

	result := make([]User, 0, len(names))
	d.mu.RLock()
	for _, name := range names {
		result = append(result, d.byName[name])
	}
	d.mu.RUnlock()

	return result
}

// Fallback builds a User from a raw definition string when the directory has
// no matching entry. Strings of the form "Name <email>" are split into their
// parts; anything else becomes a bare name.
func Fallback(raw string) User {
	raw = strings.TrimSpace(raw)

	open := strings.LastIndex(raw, "<")
	close := strings.LastIndex(raw, ">")
	if open >= 0 && close > open {
		name := strings.TrimSpace(raw[:open])
		email := strings.TrimSpace(raw[open+1 : close])
		if name == "" {
			name = email
		}
		return User{Name: name, Email: email}
	}

	if strings.Contains(raw, "@") && !strings.Contains(raw, " ") {
		return User{Name: raw, Email: raw}
	}

	return User{Name: raw}
}

// Resolve looks raw up in dir and falls back to Fallback when the directory
// is nil or has no matching entry.
func Resolve(dir Directory, raw string) User {
	fallback := Fallback(raw)
	if dir == nil {
		return fallback
	}
	if u, ok := dir.FindByName(fallback.Name); ok {
		return u
	}
	return fallback
}
