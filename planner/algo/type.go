package algo

// StopNodeAttr identifies the transit stop behind a graph node.
type StopNodeAttr struct {
	ID string // stop id
}

// TransitEdgeAttr tags an edge with its transit mode.
type TransitEdgeAttr struct {
	Mode Mode
}
