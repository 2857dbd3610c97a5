package algo

import "errors"

// Mode is the transit mode carried on an edge.
type Mode int32

const (
	MODE_WALK Mode = iota
	MODE_BUS
	MODE_RAIL
)

const (
	// Per-mode speeds in meters per minute. Used as admissible lower
	// bounds when converting straight-line distance to minutes.
	WALK_SPEED = 1.1 * 60
	BUS_SPEED  = 40 / 3.6 * 60
	RAIL_SPEED = 80 / 3.6 * 60
)

var (
	// Error: edge endpoint is not a graph node
	ErrNodeNotFound = errors.New("node not found in search graph")
	// Error: no such edge in the adjacency table
	ErrEdgeNotFound = errors.New("edge not found in search graph")
	// Error: mode string not in {walk, bus, rail}
	ErrUnknownMode = errors.New("unknown transit mode")
)

// Speed returns the mode's nominal speed in meters per minute.
func (m Mode) Speed() float64 {
	switch m {
	case MODE_BUS:
		return BUS_SPEED
	case MODE_RAIL:
		return RAIL_SPEED
	default:
		return WALK_SPEED
	}
}

func (m Mode) String() string {
	switch m {
	case MODE_WALK:
		return "walk"
	case MODE_BUS:
		return "bus"
	case MODE_RAIL:
		return "rail"
	default:
		return "unknown"
	}
}

func ModeFromString(s string) (Mode, error) {
	switch s {
	case "walk":
		return MODE_WALK, nil
	case "bus":
		return MODE_BUS, nil
	case "rail":
		return MODE_RAIL, nil
	default:
		return MODE_WALK, ErrUnknownMode
	}
}
