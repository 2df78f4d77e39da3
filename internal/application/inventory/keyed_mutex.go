package inventory

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// KeyedMutex serializa el trabajo por clave; claves distintas avanzan en paralelo.
// Las entradas se liberan cuando nadie las usa.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex crea el mapa de bloqueos.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock bloquea la clave y devuelve la función para liberarla.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// LockAll bloquea varias claves en orden lexicográfico (sin repetidas) y las libera
// en orden inverso. Dos llamadores con claves en común nunca se bloquean mutuamente.
func (k *KeyedMutex) LockAll(keys ...string) (unlock func()) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	unlocks := make([]func(), 0, len(sorted))
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		unlocks = append(unlocks, k.Lock(key))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

// Len número de claves con bloqueo activo o en espera.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// identityKeys claves de las identidades con las que una fila puede resolver un artículo:
// sucursal+sku y sucursal+product_id.
func identityKeys(branchID int64, sku, productID string) []string {
	b := strconv.FormatInt(branchID, 10)
	keys := make([]string, 0, 2)
	if sku != "" {
		keys = append(keys, b+"/sku/"+strings.ToLower(sku))
	}
	if productID != "" {
		keys = append(keys, b+"/pid/"+productID)
	}
	return keys
}

// itemIDKey clave del artículo ya resuelto. Todo cambio de cantidad la toma, la fila de
// importación después de sus claves de identidad.
func itemIDKey(itemID string) string {
	return "item/" + itemID
}
