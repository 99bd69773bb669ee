package pedigree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"livestock-farm-api-server/internal/pedigree"
)

type herd map[primitive.ObjectID]*pedigree.Record

func (h herd) fetch(_ context.Context, id primitive.ObjectID) (*pedigree.Record, error) {
	return h[id], nil
}

func animal(h herd, tag string, mother, father *primitive.ObjectID) primitive.ObjectID {
	id := primitive.NewObjectID()
	h[id] = &pedigree.Record{
		Node:     pedigree.Node{ID: id, IdentificationNumber: tag},
		MotherID: mother,
		FatherID: father,
	}
	return id
}

func TestBuildTreeNilCases(t *testing.T) {
	h := herd{}
	id := animal(h, "A-1", nil, nil)

	tree, err := pedigree.BuildTree(context.Background(), h.fetch, &id, 0)
	require.NoError(t, err)
	assert.Nil(t, tree)

	tree, err = pedigree.BuildTree(context.Background(), h.fetch, nil, 3)
	require.NoError(t, err)
	assert.Nil(t, tree)
}

func TestBuildTreeNoParents(t *testing.T) {
	h := herd{}
	id := animal(h, "A-1", nil, nil)

	tree, err := pedigree.BuildTree(context.Background(), h.fetch, &id, 3)

	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, "A-1", tree.IdentificationNumber)
	assert.Nil(t, tree.Mother)
	assert.Nil(t, tree.Father)
}

func TestBuildTreeThreeGenerations(t *testing.T) {
	h := herd{}
	// Grandparents.
	gm1 := animal(h, "GM-1", nil, nil)
	gf1 := animal(h, "GF-1", nil, nil)
	gm2 := animal(h, "GM-2", nil, nil)
	gf2 := animal(h, "GF-2", nil, nil)
	// Parents, each with both grandparents recorded.
	mother := animal(h, "M-1", &gm1, &gf1)
	father := animal(h, "F-1", &gm2, &gf2)
	child := animal(h, "C-1", &mother, &father)

	tree, err := pedigree.BuildTree(context.Background(), h.fetch, &child, 3)

	require.NoError(t, err)
	require.NotNil(t, tree)
	require.NotNil(t, tree.Mother)
	require.NotNil(t, tree.Father)
	assert.Equal(t, "M-1", tree.Mother.IdentificationNumber)
	assert.Equal(t, "F-1", tree.Father.IdentificationNumber)

	// Level 2 still carries parents; level 3 nodes are leaves.
	require.NotNil(t, tree.Mother.Mother)
	assert.Equal(t, "GM-1", tree.Mother.Mother.IdentificationNumber)
	assert.Nil(t, tree.Mother.Mother.Mother)
	assert.Nil(t, tree.Mother.Mother.Father)
	require.NotNil(t, tree.Father.Father)
	assert.Equal(t, "GF-2", tree.Father.Father.IdentificationNumber)
}

func TestBuildTreeMissingParentOmitted(t *testing.T) {
	h := herd{}
	mother := animal(h, "M-1", nil, nil)
	gone := primitive.NewObjectID()
	child := animal(h, "C-1", &mother, &gone)

	tree, err := pedigree.BuildTree(context.Background(), h.fetch, &child, 3)

	require.NoError(t, err)
	require.NotNil(t, tree.Mother)
	assert.Nil(t, tree.Father)
}

func TestBuildTreeDepthCapped(t *testing.T) {
	h := herd{}
	// Chain longer than MaxDepth.
	prev := animal(h, "G-0", nil, nil)
	ids := []primitive.ObjectID{prev}
	for i := 1; i < 10; i++ {
		prev = animal(h, "G-n", &prev, nil)
		ids = append(ids, prev)
	}

	tree, err := pedigree.BuildTree(context.Background(), h.fetch, &ids[len(ids)-1], 100)

	require.NoError(t, err)
	depth := 0
	for n := tree; n != nil; n = n.Mother {
		depth++
	}
	assert.Equal(t, pedigree.MaxDepth, depth)
}

func TestWouldCycle(t *testing.T) {
	h := herd{}
	grandmother := animal(h, "GM", nil, nil)
	mother := animal(h, "M", &grandmother, nil)
	child := animal(h, "C", &mother, nil)

	// Making the child an ancestor of its own grandmother closes a loop.
	cycle, err := pedigree.WouldCycle(context.Background(), h.fetch, grandmother, child, pedigree.MaxDepth)
	require.NoError(t, err)
	assert.True(t, cycle)

	// Self-parenting.
	cycle, err = pedigree.WouldCycle(context.Background(), h.fetch, child, child, pedigree.MaxDepth)
	require.NoError(t, err)
	assert.True(t, cycle)

	// Unrelated sire is fine.
	sire := animal(h, "S", nil, nil)
	cycle, err = pedigree.WouldCycle(context.Background(), h.fetch, child, sire, pedigree.MaxDepth)
	require.NoError(t, err)
	assert.False(t, cycle)
}
