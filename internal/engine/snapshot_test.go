package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := e.Add(ctx, AddMemoryInput{Content: "memory"})
		require.NoError(t, err)
	}
	a, err := e.AddEntity(ctx, AddEntityInput{Name: "A"})
	require.NoError(t, err)
	b, err := e.AddEntity(ctx, AddEntityInput{Name: "B"})
	require.NoError(t, err)
	_, err = e.AddRelationship(ctx, AddRelationshipInput{SourceEntityID: a.ID, TargetEntityID: b.ID, RelationType: "knows"})
	require.NoError(t, err)
	ch, err := e.CreateChannel(CreateChannelInput{Name: "general"})
	require.NoError(t, err)
	_, err = e.ShareMemoryToChannel(ctx, ch.ID, 1, "a1")
	require.NoError(t, err)

	doc := e.Export()
	assert.Equal(t, CurrentSnapshotVersion, doc.SchemaVersion)
	assert.Len(t, doc.Memories, 5)
	assert.Len(t, doc.Entities, 2)
	assert.Len(t, doc.Relationships, 1)
	assert.Len(t, doc.Channels, 1)
	assert.Len(t, doc.Memberships, 1)

	restored := New(Options{})
	restored.Import(doc)

	assert.Equal(t, len(doc.Memories), len(restored.store.memories.iterSnapshot()))
	assert.Equal(t, len(doc.Entities), restored.store.entities.count())
	assert.Equal(t, len(doc.Relationships), restored.store.relations.count())
	assert.Equal(t, len(doc.Channels), restored.store.channels.count())

	next, err := restored.Add(ctx, AddMemoryInput{Content: "next"})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), next.ID, "next id after restore is max+1")

	_, ok := restored.FindChannelByName("general")
	assert.True(t, ok, "channel name index survives restore")
}
