package core

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// UID identifies game objects, components and resources across save files.
type UID uint32

// InvalidUID is never handed out by NewUID.
const InvalidUID UID = 0

// NewUID derives a random 32-bit identifier from a v4 UUID.
func NewUID() UID {
	for {
		u := uuid.New()
		id := UID(binary.LittleEndian.Uint32(u[:4]))
		if id != InvalidUID {
			return id
		}
	}
}

// NewName returns a unique string suitable for naming generated nodes.
func NewName() string {
	return uuid.NewString()
}
