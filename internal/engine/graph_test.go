package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRelationshipRequiresBothEndpoints(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a, err := e.AddEntity(ctx, AddEntityInput{Name: "A"})
	require.NoError(t, err)

	_, err = e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: a.ID, TargetEntityID: 999, RelationType: "knows"})
	assert.ErrorIs(t, err, ErrGraphEndpoint)

	_, err = e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: 999, TargetEntityID: a.ID, RelationType: "knows"})
	assert.ErrorIs(t, err, ErrGraphEndpoint)
}

func TestFindEntityByNameFirstInsertionWins(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	first, err := e.AddEntity(ctx, AddEntityInput{Name: "dup"})
	require.NoError(t, err)
	_, err = e.AddEntity(ctx, AddEntityInput{Name: "dup"})
	require.NoError(t, err)

	found, err := e.FindEntityByName("dup")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestTraverseBFSOrderAndDepth(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a, err := e.AddEntity(ctx, AddEntityInput{Name: "A"})
	require.NoError(t, err)
	b, err := e.AddEntity(ctx, AddEntityInput{Name: "B"})
	require.NoError(t, err)
	c, err := e.AddEntity(ctx, AddEntityInput{Name: "C"})
	require.NoError(t, err)

	_, err = e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: a.ID, TargetEntityID: b.ID, RelationType: "knows"})
	require.NoError(t, err)
	_, err = e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: b.ID, TargetEntityID: c.ID, RelationType: "knows"})
	require.NoError(t, err)

	depth1, err := e.Traverse(a.ID, 1)
	require.NoError(t, err)
	require.Len(t, depth1, 2)
	assert.Equal(t, a.ID, depth1[0].Entity.ID, "start is visited first")
	assert.Equal(t, b.ID, depth1[1].Entity.ID)
	assert.Len(t, depth1[0].Relationships, 1)
	assert.Empty(t, depth1[1].Relationships)

	depth2, err := e.Traverse(a.ID, 2)
	require.NoError(t, err)
	require.Len(t, depth2, 3)
	assert.Equal(t, []uint64{a.ID, b.ID, c.ID}, []uint64{depth2[0].Entity.ID, depth2[1].Entity.ID, depth2[2].Entity.ID})
}

func TestTraverseVisitsEachEntityAtMostOnce(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	a, _ := e.AddEntity(ctx, AddEntityInput{Name: "A"})
	b, _ := e.AddEntity(ctx, AddEntityInput{Name: "B"})
	c, _ := e.AddEntity(ctx, AddEntityInput{Name: "C"})

	_, err := e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: a.ID, TargetEntityID: b.ID, RelationType: "knows"})
	require.NoError(t, err)
	_, err = e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: a.ID, TargetEntityID: c.ID, RelationType: "knows"})
	require.NoError(t, err)
	_, err = e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: b.ID, TargetEntityID: c.ID, RelationType: "knows"})
	require.NoError(t, err)
	_, err = e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: c.ID, TargetEntityID: a.ID, RelationType: "knows"})
	require.NoError(t, err)

	visited, err := e.Traverse(a.ID, 10)
	require.NoError(t, err)
	seen := map[uint64]int{}
	for _, n := range visited {
		seen[n.Entity.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "entity %d visited more than once", id)
	}
}

func TestTraverseDepthZeroReturnsOnlyStart(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	a, _ := e.AddEntity(ctx, AddEntityInput{Name: "A"})
	b, _ := e.AddEntity(ctx, AddEntityInput{Name: "B"})
	_, err := e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: a.ID, TargetEntityID: b.ID, RelationType: "knows"})
	require.NoError(t, err)

	visited, err := e.Traverse(a.ID, 0)
	require.NoError(t, err)
	require.Len(t, visited, 1)
	assert.Equal(t, a.ID, visited[0].Entity.ID)
}

func TestNeighborsInsertionOrder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	a, _ := e.AddEntity(ctx, AddEntityInput{Name: "A"})
	b, _ := e.AddEntity(ctx, AddEntityInput{Name: "B"})
	c, _ := e.AddEntity(ctx, AddEntityInput{Name: "C"})

	_, err := e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: a.ID, TargetEntityID: b.ID, RelationType: "knows"})
	require.NoError(t, err)
	_, err = e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: a.ID, TargetEntityID: c.ID, RelationType: "knows"})
	require.NoError(t, err)

	neighbors := e.Neighbors(a.ID)
	require.Len(t, neighbors, 2)
	assert.Equal(t, b.ID, neighbors[0].Other.ID)
	assert.Equal(t, c.ID, neighbors[1].Other.ID)
}
