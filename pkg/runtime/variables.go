package runtime

// VarStore is the hybrid variable storage of one interpreter context.
//
// Names the translator resolved to constant-pool entries get dense integer
// identifiers and live in a slice sized once from the pool; names computed
// at runtime fall through to the dynamic map tier. Both tiers hold the same
// Value shape.
//
// Stored strings never alias the stack's scratch buffer: callers materialize
// stack-backed text into an owned copy before storing (copy-on-store), while
// constant-pool text is stored as a borrow flagged not-owned. Stored object
// references are retained on the way in and released on overwrite.
type VarStore struct {
	dense []Value
	dyn   map[string]Value
	arena *Arena
}

// NewVarStore creates a store with denseCount array-tier slots.
func NewVarStore(denseCount int, arena *Arena) *VarStore {
	return &VarStore{
		dense: make([]Value, denseCount),
		dyn:   make(map[string]Value),
		arena: arena,
	}
}

func (vs *VarStore) storeSlot(slot *Value, v Value) error {
	// retain before releasing the old reference so writing a reference
	// over itself cannot drop the count to zero in between
	if v.Kind == KindObject {
		if err := vs.arena.Retain(v.Obj); err != nil {
			return err
		}
	}
	old := *slot
	*slot = v
	if old.Kind == KindObject {
		return vs.arena.Release(old.Obj)
	}
	return nil
}

// StoreDense writes a value into an array-tier slot.
func (vs *VarStore) StoreDense(id int, v Value) error {
	if id < 0 || id >= len(vs.dense) {
		return ErrBadHandle
	}
	return vs.storeSlot(&vs.dense[id], v)
}

// Store writes a value under a runtime-computed name.
func (vs *VarStore) Store(name string, v Value) error {
	slot := vs.dyn[name]
	if err := vs.storeSlot(&slot, v); err != nil {
		return err
	}
	vs.dyn[name] = slot
	return nil
}

// LoadDense reads an array-tier slot without transferring ownership.
func (vs *VarStore) LoadDense(id int) Value {
	if id < 0 || id >= len(vs.dense) {
		return Undefined()
	}
	return vs.dense[id]
}

// Load reads a dynamic name without transferring ownership. An unset name
// yields the undefined sentinel, not an error.
func (vs *VarStore) Load(name string) Value {
	if v, ok := vs.dyn[name]; ok {
		return v
	}
	return Undefined()
}

// Close releases every owned payload in both tiers. Safe to call on a store
// that was never populated, and safe to call more than once: released slots
// are cleared to undefined so no reference is dropped twice.
func (vs *VarStore) Close() error {
	for i := range vs.dense {
		if vs.dense[i].Kind == KindObject {
			if err := vs.arena.Release(vs.dense[i].Obj); err != nil {
				return err
			}
		}
		vs.dense[i] = Undefined()
	}
	for name, v := range vs.dyn {
		if v.Kind == KindObject {
			if err := vs.arena.Release(v.Obj); err != nil {
				return err
			}
		}
		delete(vs.dyn, name)
	}
	return nil
}
