package domain

import "time"

// TreeNode common fields of hierarchical records
type TreeNode struct {
	Name     string
	Parent   string
	IsGroup  bool
	Modified time.Time
}

// IsRoot returns true if the node has no parent
func (n *TreeNode) IsRoot() bool {
	return n.Parent == ""
}

// SalesPerson member of the sales team tree
type SalesPerson struct {
	TreeNode
	SalesPersonName string
	Enabled         bool
	UserID          string
	ContactMobile   string
	ContactEmail    string
	Employee        string
}

// Territory node of the territory tree
type Territory struct {
	TreeNode
	TerritoryName string
}

// SalesPersonOption row of the sales person autocomplete
type SalesPersonOption struct {
	Name         string
	Availability string // Available / Unavailable, empty when no slot is given
}

// Sales person availability labels
const (
	SalesPersonAvailable   = "Available"
	SalesPersonUnavailable = "Unavailable"
)

// TimelinePoint number of opportunities created on a day
type TimelinePoint struct {
	Date  time.Time
	Count int
}

// SalesPersonQuery parameters of the sales person autocomplete.
// Availability is computed only when both Start and End are set.
type SalesPersonQuery struct {
	Txt     string
	Allowed []string
	Start   *time.Time
	End     *time.Time
	Exclude string
	Offset  uint64
	Limit   uint64
}

// WithAvailability reports whether the query carries a slot
func (q SalesPersonQuery) WithAvailability() bool {
	return q.Start != nil && q.End != nil
}

// ValidateParent checks that parent can hold the node.
// subtree lists the node and all its descendants.
func (n *TreeNode) ValidateParent(parent *TreeNode, subtree []string) error {
	if parent == nil {
		return nil
	}
	if !parent.IsGroup {
		return Invalid("Parent %s is not a group node", parent.Name)
	}
	for _, name := range subtree {
		if name == parent.Name {
			return Invalid("%s cannot be moved under itself or its descendant %s", n.Name, parent.Name)
		}
	}
	return nil
}

// ValidateOneRoot fails when the tree has more than one root
func ValidateOneRoot(roots []string) error {
	if len(roots) > 1 {
		return Invalid("Multiple root nodes not allowed: %s", CommaAnd(roots))
	}
	return nil
}
