// Package pedigree builds bounded ancestor trees over the self-referential
// mother/father graph of animals.
package pedigree

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDepth is the number of generations returned when the caller does not
// ask for a specific depth.
const DefaultDepth = 3

// MaxDepth caps traversal regardless of what the caller requests.
const MaxDepth = 5

// Node is one animal in the tree. Mother and Father are omitted entirely on
// leaf nodes.
type Node struct {
	ID                   primitive.ObjectID  `json:"id"`
	IdentificationNumber string              `json:"identificationNumber"`
	Gender               string              `json:"gender"`
	BirthDate            *time.Time          `json:"birthDate,omitempty"`
	CategoryID           *primitive.ObjectID `json:"categoryId,omitempty"`
	BreedID              *primitive.ObjectID `json:"breedId,omitempty"`
	Mother               *Node               `json:"mother,omitempty"`
	Father               *Node               `json:"father,omitempty"`
}

// Record is the minimal projection a Fetcher returns for one animal.
type Record struct {
	Node     Node
	MotherID *primitive.ObjectID
	FatherID *primitive.ObjectID
}

// Fetcher loads the projection for one animal. A nil record (with nil error)
// means the animal does not exist; the corresponding branch is omitted.
type Fetcher func(ctx context.Context, id primitive.ObjectID) (*Record, error)

// BuildTree resolves the ancestor tree of id down to depth generations. It
// returns nil for a non-positive depth or a nil id. Parent subtrees are
// resolved concurrently. The mother/father graph is assumed acyclic within the
// depth bound; WouldCycle guards that at write time.
func BuildTree(ctx context.Context, fetch Fetcher, id *primitive.ObjectID, depth int) (*Node, error) {
	if id == nil || depth <= 0 {
		return nil, nil
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}

	rec, err := fetch(ctx, *id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	node := rec.Node
	if depth > 1 {
		var (
			mother, father *Node
			mErr, fErr     error
			done           = make(chan struct{})
		)
		go func() {
			defer close(done)
			father, fErr = BuildTree(ctx, fetch, rec.FatherID, depth-1)
		}()
		mother, mErr = BuildTree(ctx, fetch, rec.MotherID, depth-1)
		<-done

		if mErr != nil {
			return nil, mErr
		}
		if fErr != nil {
			return nil, fErr
		}
		node.Mother = mother
		node.Father = father
	}

	return &node, nil
}

// WouldCycle reports whether making parentID a parent of animalID would create
// an ancestry cycle reachable within maxDepth generations. Setting an animal
// as its own parent is always a cycle.
func WouldCycle(ctx context.Context, fetch Fetcher, animalID, parentID primitive.ObjectID, maxDepth int) (bool, error) {
	if animalID == parentID {
		return true, nil
	}
	if maxDepth <= 0 {
		return false, nil
	}

	rec, err := fetch(ctx, parentID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}

	for _, next := range []*primitive.ObjectID{rec.MotherID, rec.FatherID} {
		if next == nil {
			continue
		}
		cycle, err := WouldCycle(ctx, fetch, animalID, *next, maxDepth-1)
		if err != nil {
			return false, err
		}
		if cycle {
			return true, nil
		}
	}
	return false, nil
}
