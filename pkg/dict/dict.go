// Package dict defines the client-side object cache an SDO client
// writes into after an upload and reads out of before a download: a
// small key-value store keyed by object dictionary index, decoupled
// from the wire codec so a host can plug in its own backing store.
package dict

import (
	"fmt"
	"sync"

	"github.com/canopenio/sdoclient/pkg/sdo"
)

// Object is one cached object dictionary entry: the raw bytes an SDO
// transfer moved, alongside the index they belong to.
type Object struct {
	Index sdo.Index
	Data  []byte
}

// Dictionary is the contract an SDO client uses to store upload
// results and to look up values for the next download. Implementations
// need not be safe for concurrent use unless documented otherwise.
type Dictionary interface {
	Set(obj Object)
	Get(index sdo.Index) (Object, bool)
}

// Memory is an in-memory Dictionary, safe for concurrent use. It is the
// reference implementation used by tests and by the CLI client when no
// persistent store is configured.
type Memory struct {
	mu      sync.RWMutex
	objects map[sdo.Index]Object
}

// NewMemory returns an empty Memory dictionary.
func NewMemory() *Memory {
	return &Memory{objects: make(map[sdo.Index]Object)}
}

func (m *Memory) Set(obj Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[obj.Index] = obj
}

func (m *Memory) Get(index sdo.Index) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[index]
	return obj, ok
}

// String renders the number of objects currently cached, for debug
// logging.
func (m *Memory) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("dict.Memory{%d objects}", len(m.objects))
}
