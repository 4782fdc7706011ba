// Package dset exposes a typed set contract over a backend set. Membership
// identity is byte equality of the encoded form, so the codec must re-encode
// equal values identically (the default JSON codec does for plain values).
package dset

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/fsnader/elephant/codec"
	"github.com/fsnader/elephant/store"
)

// ErrNilMember is returned by Add and Remove for absent values.
var ErrNilMember = errors.New("dset: nil member")

// Set is a set of T persisted in a backend set. Instances in different
// processes with the same namespace and name share state.
type Set[T any] struct {
	name  string
	key   string
	set   store.Set
	codec codec.Codec[T]
}

// Options configures a Set. The Set backend is required.
type Options[T any] struct {
	// Namespace prefixes the derived key. Defaults to "elephant".
	Namespace string
	Set       store.Set
	// Codec defaults to codec.JSON.
	Codec codec.Codec[T]
}

// Open returns a Set named name.
func Open[T any](name string, opts Options[T]) (*Set[T], error) {
	if name == "" {
		return nil, errors.New("dset: name is required")
	}
	if opts.Set == nil {
		return nil, errors.New("dset: Options.Set is required")
	}
	if opts.Namespace == "" {
		opts.Namespace = "elephant"
	}
	if opts.Codec == nil {
		opts.Codec = codec.JSON[T]()
	}
	return &Set[T]{
		name:  name,
		key:   store.SetKey(opts.Namespace, name),
		set:   opts.Set,
		codec: opts.Codec,
	}, nil
}

// Add inserts v. Adding an existing member is a no-op.
func (s *Set[T]) Add(ctx context.Context, v T) error {
	b, err := s.encode(v)
	if err != nil {
		return err
	}
	return s.set.SAdd(ctx, s.key, b)
}

// Remove deletes v. Removing an absent member is not an error.
func (s *Set[T]) Remove(ctx context.Context, v T) error {
	b, err := s.encode(v)
	if err != nil {
		return err
	}
	return s.set.SRem(ctx, s.key, b)
}

// Contains reports whether v is a member.
func (s *Set[T]) Contains(ctx context.Context, v T) (bool, error) {
	b, err := s.encode(v)
	if err != nil {
		return false, err
	}
	return s.set.SIsMember(ctx, s.key, b)
}

// Len reports the number of members. Advisory under concurrent mutation.
func (s *Set[T]) Len(ctx context.Context) (int64, error) {
	return s.set.SCard(ctx, s.key)
}

// Members returns all members in unspecified order.
func (s *Set[T]) Members(ctx context.Context) ([]T, error) {
	raw, err := s.set.SMembers(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("dset %q: members: %w", s.name, err)
	}
	out := make([]T, 0, len(raw))
	for _, b := range raw {
		v, err := s.codec.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("dset %q: decode: %w", s.name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Set[T]) encode(v T) ([]byte, error) {
	if isNil(v) {
		return nil, ErrNilMember
	}
	b, err := s.codec.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("dset %q: encode: %w", s.name, err)
	}
	return b, nil
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
