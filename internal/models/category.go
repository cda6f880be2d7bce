package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrCategoryCycle is returned by BuildCategoryTree when the parent
// references form a loop instead of a forest.
var ErrCategoryCycle = errors.New("category parent references form a cycle")

// Category is a node in a community-scoped category forest. ParentID is a
// non-owning reference: deleting a parent re-parents its children to nil,
// it never deletes them.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Slug        string     `json:"slug"`
	CommunityID uuid.UUID  `json:"community"`
	ParentID    *uuid.UUID `json:"parentCategory,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CategoryNode is a category with its recursively assembled subtree.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// BuildCategoryTree assembles the flat category list into a forest in a
// single pass over an id-indexed map. A category whose parent is missing
// from the input is treated as a root rather than dropped. Roots and
// children keep the relative order of the input slice.
func BuildCategoryTree(categories []*Category) ([]*CategoryNode, error) {
	nodes := make(map[uuid.UUID]*CategoryNode, len(categories))
	for _, category := range categories {
		nodes[category.ID] = &CategoryNode{
			Category: *category,
			Children: []*CategoryNode{},
		}
	}

	roots := []*CategoryNode{}
	for _, category := range categories {
		node := nodes[category.ID]
		if category.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*category.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	// Every node must be reachable from a root; anything left over sits on
	// a cycle.
	reachable := 0
	stack := append([]*CategoryNode{}, roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reachable++
		stack = append(stack, node.Children...)
	}
	if reachable != len(categories) {
		return nil, ErrCategoryCycle
	}

	return roots, nil
}
