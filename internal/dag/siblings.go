package dag

// Restriction is the edge-type class a node's incoming edge is confined to by its siblings.
type Restriction string

const (
	RestrictNone           Restriction = ""
	RestrictSuccessFailure Restriction = "successFailure"
	RestrictAlways         Restriction = "always"
)

// SiblingTypes returns the distinct edge types of parentID's children,
// ignoring excludeID (the node being added or edited).
func SiblingTypes(t *Tree, parentID, excludeID int) (EdgeSet, error) {
	parent, err := Find(t, parentID)
	if err != nil {
		return nil, err
	}
	set := make(EdgeSet)
	for _, c := range t.Children(parent.ID) {
		if c.ID == excludeID || c.EdgeType == "" {
			continue
		}
		set[c.EdgeType] = struct{}{}
	}
	return set, nil
}

// RestrictionOf classifies a sibling edge set. A set that already mixes both
// classes is conflicted and restricts nothing.
func RestrictionOf(types EdgeSet) Restriction {
	sf := types.Has(EdgeSuccess) || types.Has(EdgeFailure)
	always := types.Has(EdgeAlways)
	switch {
	case sf && always:
		return RestrictNone
	case sf:
		return RestrictSuccessFailure
	case always:
		return RestrictAlways
	}
	return RestrictNone
}

// AllowedEdgeTypes returns the edge types a child of parentID may take without
// conflicting with its siblings (other than excludeID).
func AllowedEdgeTypes(t *Tree, parentID, excludeID int) ([]EdgeType, error) {
	if t.IsRoot(parentID) {
		return []EdgeType{EdgeAlways}, nil
	}
	types, err := SiblingTypes(t, parentID, excludeID)
	if err != nil {
		return nil, err
	}
	switch RestrictionOf(types) {
	case RestrictSuccessFailure:
		return []EdgeType{EdgeSuccess, EdgeFailure}, nil
	case RestrictAlways:
		return []EdgeType{EdgeAlways}, nil
	}
	return []EdgeType{EdgeAlways, EdgeSuccess, EdgeFailure}, nil
}

// DefaultEdgeType suggests the edge type for a new child of parentID.
// Under the root only "always" is legal; otherwise "always" is forced when the
// siblings use it and "success" is suggested in every other case.
func DefaultEdgeType(t *Tree, parentID, excludeID int) (EdgeType, error) {
	if t.IsRoot(parentID) {
		return EdgeAlways, nil
	}
	types, err := SiblingTypes(t, parentID, excludeID)
	if err != nil {
		return "", err
	}
	if RestrictionOf(types) == RestrictAlways {
		return EdgeAlways, nil
	}
	return EdgeSuccess, nil
}
