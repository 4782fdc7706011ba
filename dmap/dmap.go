// Package dmap exposes a typed map contract over a backend hash. The
// translation is mechanical: the value of engineering interest lives in the
// queue package; dmap only encodes values and forwards to store.Hash.
package dmap

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/fsnader/elephant/codec"
	"github.com/fsnader/elephant/store"
)

// ErrNilValue is returned by Set for nil pointers and other absent values.
var ErrNilValue = errors.New("dmap: nil value")

// Map is a string-keyed map of T persisted in a backend hash. Instances in
// different processes with the same namespace and name share state.
type Map[T any] struct {
	name  string
	key   string
	hash  store.Hash
	codec codec.Codec[T]
}

// Options configures a Map. Hash is required.
type Options[T any] struct {
	// Namespace prefixes the derived key. Defaults to "elephant".
	Namespace string
	Hash      store.Hash
	// Codec defaults to codec.JSON.
	Codec codec.Codec[T]
}

// Open returns a Map named name.
func Open[T any](name string, opts Options[T]) (*Map[T], error) {
	if name == "" {
		return nil, errors.New("dmap: name is required")
	}
	if opts.Hash == nil {
		return nil, errors.New("dmap: Options.Hash is required")
	}
	if opts.Namespace == "" {
		opts.Namespace = "elephant"
	}
	if opts.Codec == nil {
		opts.Codec = codec.JSON[T]()
	}
	return &Map[T]{
		name:  name,
		key:   store.MapKey(opts.Namespace, name),
		hash:  opts.Hash,
		codec: opts.Codec,
	}, nil
}

// Set stores v under field, overwriting any previous value.
func (m *Map[T]) Set(ctx context.Context, field string, v T) error {
	if isNil(v) {
		return ErrNilValue
	}
	b, err := m.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("dmap %q: encode: %w", m.name, err)
	}
	return m.hash.HSet(ctx, m.key, field, b)
}

// Get returns the value under field; the second return value is false when
// the field is absent.
func (m *Map[T]) Get(ctx context.Context, field string) (T, bool, error) {
	var zero T
	b, ok, err := m.hash.HGet(ctx, m.key, field)
	if err != nil {
		return zero, false, fmt.Errorf("dmap %q: get: %w", m.name, err)
	}
	if !ok {
		return zero, false, nil
	}
	v, err := m.codec.Decode(b)
	if err != nil {
		return zero, false, fmt.Errorf("dmap %q: decode: %w", m.name, err)
	}
	return v, true, nil
}

// Delete removes field. Removing an absent field is not an error.
func (m *Map[T]) Delete(ctx context.Context, field string) error {
	return m.hash.HDel(ctx, m.key, field)
}

// Len reports the number of fields. Advisory under concurrent mutation.
func (m *Map[T]) Len(ctx context.Context) (int64, error) {
	return m.hash.HLen(ctx, m.key)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
