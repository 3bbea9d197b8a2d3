package domain

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrSpaceNameEmpty = errors.New("space name empty")
	ErrBadDimensions  = errors.New("bad space dimensions")
)

type SpaceID string

// Space is a bounded 2-D grid that sessions occupy. Width and height are
// fixed for the lifetime of the space; occupant positions stay inside
// [0,width) x [0,height).
type Space struct {
	ID      SpaceID        `json:"id"`
	Name    string         `json:"name"`
	OwnerID UserID         `json:"ownerId"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Items   []SpaceElement `json:"elements,omitempty"`
}

// SpaceElement is one placed element inside a space.
type SpaceElement struct {
	ID        string `json:"id"`
	ElementID string `json:"elementId"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Static    bool   `json:"static"`
}

// Element is a catalog entry placeable into spaces.
type Element struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Static   bool   `json:"static"`
}

type Avatar struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
	Name     string `json:"name"`
}

func NewSpace(name string, owner UserID, width, height int) (*Space, error) {
	if name == "" {
		return nil, ErrSpaceNameEmpty
	}
	if width <= 0 || height <= 0 {
		return nil, ErrBadDimensions
	}
	return &Space{
		ID:      SpaceID(uuid.NewString()),
		Name:    name,
		OwnerID: owner,
		Width:   width,
		Height:  height,
	}, nil
}
