package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func category(name string, parentID *uuid.UUID) *Category {
	return &Category{
		ID:       uuid.New(),
		Name:     name,
		Slug:     Slugify(name),
		ParentID: parentID,
	}
}

func TestBuildCategoryTreeForest(t *testing.T) {
	rootA := category("General", nil)
	childA := category("Announcements", &rootA.ID)
	grandchild := category("Releases", &childA.ID)
	rootB := category("Off Topic", nil)

	tree, err := BuildCategoryTree([]*Category{rootA, childA, grandchild, rootB})
	assert.NoError(t, err)
	assert.Len(t, tree, 2)

	assert.Equal(t, "General", tree[0].Name)
	assert.Equal(t, "Off Topic", tree[1].Name)
	assert.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Announcements", tree[0].Children[0].Name)
	assert.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "Releases", tree[0].Children[0].Children[0].Name)
	assert.Empty(t, tree[1].Children)
}

func TestBuildCategoryTreeMissingParentBecomesRoot(t *testing.T) {
	missing := uuid.New()
	orphan := category("Orphan", &missing)

	tree, err := BuildCategoryTree([]*Category{orphan})
	assert.NoError(t, err)
	assert.Len(t, tree, 1)
	assert.Equal(t, "Orphan", tree[0].Name)
}

func TestBuildCategoryTreeDetectsSelfParent(t *testing.T) {
	looped := category("Loop", nil)
	looped.ParentID = &looped.ID

	_, err := BuildCategoryTree([]*Category{looped})
	assert.ErrorIs(t, err, ErrCategoryCycle)
}

func TestBuildCategoryTreeDetectsCycle(t *testing.T) {
	a := category("A", nil)
	b := category("B", &a.ID)
	a.ParentID = &b.ID

	_, err := BuildCategoryTree([]*Category{a, b})
	assert.ErrorIs(t, err, ErrCategoryCycle)
}

func TestBuildCategoryTreeEmptyInput(t *testing.T) {
	tree, err := BuildCategoryTree(nil)
	assert.NoError(t, err)
	assert.Empty(t, tree)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "gator-swamp", Slugify("Gator Swamp"))
	assert.Equal(t, "lots-of-space", Slugify("  Lots   of  Space "))
	assert.Equal(t, "already-plain", Slugify("already-plain"))
	assert.Equal(t, "", Slugify("   "))
}
