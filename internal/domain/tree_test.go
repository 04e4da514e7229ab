package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTreeNode_ValidateParent(t *testing.T) {
	node := &TreeNode{Name: "North", Parent: "All Territories", IsGroup: true}

	assert.NoError(t, node.ValidateParent(nil, nil))
	assert.NoError(t, node.ValidateParent(&TreeNode{Name: "Pakistan", IsGroup: true}, []string{"North", "Lahore"}))

	err := node.ValidateParent(&TreeNode{Name: "Lahore", IsGroup: true}, []string{"North", "Lahore"})
	assert.ErrorIs(t, err, ErrValidation)

	err = node.ValidateParent(&TreeNode{Name: "North", IsGroup: true}, []string{"North"})
	assert.ErrorIs(t, err, ErrValidation)

	err = node.ValidateParent(&TreeNode{Name: "Karachi"}, []string{"North"})
	assert.EqualError(t, err, "Parent Karachi is not a group node")
}

func TestValidateOneRoot(t *testing.T) {
	assert.NoError(t, ValidateOneRoot(nil))
	assert.NoError(t, ValidateOneRoot([]string{"Sales Team"}))
	assert.EqualError(t, ValidateOneRoot([]string{"A", "B", "C"}), "Multiple root nodes not allowed: A, B and C")
}
