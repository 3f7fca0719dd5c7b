package escrowdb

import (
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
)

// NewMemory returns a fresh in-memory store. It backs tests, fakenet
// genesis checks and the simulate command.
func NewMemory() Store {
	return memorydb.New()
}
