package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notarium/core/pkg/types"
)

func TestAddFindTagRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	tag := &types.Tag{Name: "Recipes", Active: true, IsLocal: true}
	require.NoError(t, e.AddTag(tag))

	found, err := e.FindTagByLocalID(tag.LocalID)
	require.NoError(t, err)
	require.Equal(t, "Recipes", found.Name)
	require.True(t, found.Active)
}

func TestDeleteTagIsSoftAndStillFindable(t *testing.T) {
	e := newTestEngine(t)
	tag := &types.Tag{Name: "Soon Gone", Active: true}
	require.NoError(t, e.AddTag(tag))

	require.NoError(t, e.DeleteTag(tag.LocalID, 12345))

	found, err := e.FindTagByLocalID(tag.LocalID)
	require.NoError(t, err)
	require.False(t, found.Active)
	require.NotNil(t, found.DeletionTimestamp)
	require.Equal(t, int64(12345), *found.DeletionTimestamp)
}

func TestExpungeTagCascadesDescendants(t *testing.T) {
	e := newTestEngine(t)
	root := &types.Tag{Name: "root", Active: true}
	require.NoError(t, e.AddTag(root))
	child := &types.Tag{Name: "child", Active: true, ParentLocalID: root.LocalID}
	require.NoError(t, e.AddTag(child))
	grandchild := &types.Tag{Name: "grandchild", Active: true, ParentLocalID: child.LocalID}
	require.NoError(t, e.AddTag(grandchild))
	sibling := &types.Tag{Name: "sibling", Active: true}
	require.NoError(t, e.AddTag(sibling))

	expunged, err := e.ExpungeTag(root.LocalID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{root.LocalID, child.LocalID, grandchild.LocalID}, expunged)

	_, err = e.FindTagByLocalID(root.LocalID)
	require.True(t, types.IsKind(err, types.KindNotFound))
	_, err = e.FindTagByLocalID(child.LocalID)
	require.True(t, types.IsKind(err, types.KindNotFound))
	_, err = e.FindTagByLocalID(grandchild.LocalID)
	require.True(t, types.IsKind(err, types.KindNotFound))

	still, err := e.FindTagByLocalID(sibling.LocalID)
	require.NoError(t, err)
	require.Equal(t, "sibling", still.Name)
}

func TestListTagsExcludesInactive(t *testing.T) {
	e := newTestEngine(t)
	active := &types.Tag{Name: "active", Active: true}
	require.NoError(t, e.AddTag(active))
	inactive := &types.Tag{Name: "inactive", Active: false}
	require.NoError(t, e.AddTag(inactive))

	out, err := e.ListTags(types.TagOrderByName, types.ListOptions{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "active", out[0].Name)
}

func TestGetTagCountHonorsCountFlags(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.AddTag(&types.Tag{Name: "active", Active: true}))
	require.NoError(t, e.AddTag(&types.Tag{Name: "inactive", Active: false}))

	onlyActive, err := e.GetTagCount(types.Scope{}, types.CountOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, onlyActive)

	all, err := e.GetTagCount(types.Scope{}, types.CountOptions{Flags: types.CountIncludeNonDeleted | types.CountIncludeDeleted})
	require.NoError(t, err)
	require.Equal(t, 2, all)
}
