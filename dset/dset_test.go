package dset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fsnader/elephant/store/memstore"
)

func TestAddContainsRemove(t *testing.T) {
	s, err := Open[string]("tags", Options[string]{Namespace: "test", Set: memstore.New()})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "red"))
	require.NoError(t, s.Add(ctx, "red")) // idempotent
	require.NoError(t, s.Add(ctx, "blue"))

	ok, err := s.Contains(ctx, "red")
	require.NoError(t, err)
	require.True(t, ok)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.NoError(t, s.Remove(ctx, "red"))
	ok, err = s.Contains(ctx, "red")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMembersRoundTrip(t *testing.T) {
	type tag struct {
		ID int `json:"id"`
	}
	s, err := Open[tag]("tags", Options[tag]{Namespace: "test", Set: memstore.New()})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, tag{ID: 1}))
	require.NoError(t, s.Add(ctx, tag{ID: 2}))

	members, err := s.Members(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []tag{{ID: 1}, {ID: 2}}, members)
}

func TestNilMemberRejected(t *testing.T) {
	s, err := Open[*int]("xs", Options[*int]{Namespace: "test", Set: memstore.New()})
	require.NoError(t, err)
	require.ErrorIs(t, s.Add(context.Background(), nil), ErrNilMember)
	require.ErrorIs(t, s.Remove(context.Background(), nil), ErrNilMember)
}
