package runtime

// Handle names an object record in the arena. Records are addressed by
// handle rather than pointer so ownership stays explicit at every store and
// retrieve boundary.
type Handle int32

// NilHandle is the absent-object sentinel.
const NilHandle Handle = -1

// Property is one named slot of an object record, shaped like a variable.
type Property struct {
	Name  string
	Value Value
}

type objectRecord struct {
	refs  int
	props []Property
	live  bool
}

// Arena owns every object record of one interpreter context. Records are
// reference counted: the count equals the number of live owning references
// (stack entries, variable slots, other objects' properties). Release to
// zero recursively releases object-valued properties and returns the slot to
// the free list. Reference cycles are never collected; that leak is an
// accepted property of the model, not a bug to detect here.
type Arena struct {
	records []objectRecord
	free    []Handle
}

func NewArena() *Arena {
	return &Arena{}
}

// Allocate creates a record with a reference count of one and room for
// propertyCount properties.
func (a *Arena) Allocate(propertyCount int) Handle {
	rec := objectRecord{
		refs:  1,
		props: make([]Property, 0, propertyCount),
		live:  true,
	}

	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.records[h] = rec
		return h
	}

	a.records = append(a.records, rec)
	return Handle(len(a.records) - 1)
}

func (a *Arena) record(h Handle) (*objectRecord, error) {
	if h < 0 || int(h) >= len(a.records) {
		return nil, ErrBadHandle
	}
	rec := &a.records[h]
	if !rec.live {
		return nil, ErrDoubleRelease
	}
	return rec, nil
}

// Live reports whether the handle names an allocated record.
func (a *Arena) Live(h Handle) bool {
	return h >= 0 && int(h) < len(a.records) && a.records[h].live
}

// Refs returns the current reference count.
func (a *Arena) Refs(h Handle) (int, error) {
	rec, err := a.record(h)
	if err != nil {
		return 0, err
	}
	return rec.refs, nil
}

// Retain increments the reference count.
func (a *Arena) Retain(h Handle) error {
	rec, err := a.record(h)
	if err != nil {
		return err
	}
	rec.refs++
	return nil
}

// Release decrements the reference count. At zero the record's object-valued
// properties are released recursively and the slot is freed. Releasing a
// freed record is a contract violation and fails with ErrDoubleRelease.
func (a *Arena) Release(h Handle) error {
	rec, err := a.record(h)
	if err != nil {
		return err
	}

	rec.refs--
	if rec.refs > 0 {
		return nil
	}

	// mark dead before recursing so a cycle back into this record is seen
	// as already freed instead of recursing forever
	rec.live = false
	props := rec.props
	rec.props = nil
	for _, p := range props {
		if p.Value.Kind == KindObject {
			// a cycle reaching back here surfaces as ErrDoubleRelease;
			// swallow it, the record is already being torn down
			if err := a.Release(p.Value.Obj); err != nil && err != ErrDoubleRelease {
				return err
			}
		}
	}

	a.free = append(a.free, h)
	return nil
}

// SetProperty stores a value into a named property, creating the slot on
// first use. An incoming object reference is retained before the overwritten
// one is released, so storing a reference over itself is safe.
func (a *Arena) SetProperty(h Handle, name string, v Value) error {
	rec, err := a.record(h)
	if err != nil {
		return err
	}

	if v.Kind == KindObject {
		if err := a.Retain(v.Obj); err != nil {
			return err
		}
	}

	for i := range rec.props {
		if rec.props[i].Name == name {
			old := rec.props[i].Value
			rec.props[i].Value = v
			if old.Kind == KindObject {
				return a.Release(old.Obj)
			}
			return nil
		}
	}

	rec.props = append(rec.props, Property{Name: name, Value: v})
	return nil
}

// Property loads a named property without transferring ownership. A missing
// name yields the undefined sentinel.
func (a *Arena) Property(h Handle, name string) (Value, error) {
	rec, err := a.record(h)
	if err != nil {
		return Value{}, err
	}
	for i := range rec.props {
		if rec.props[i].Name == name {
			return rec.props[i].Value, nil
		}
	}
	return Undefined(), nil
}

// PropertyCount returns the number of populated properties.
func (a *Arena) PropertyCount(h Handle) (int, error) {
	rec, err := a.record(h)
	if err != nil {
		return 0, err
	}
	return len(rec.props), nil
}
