package value

import (
	"unsafe"

	concatrt "github.com/wippyai/concat-runtime"
	"github.com/wippyai/concat-runtime/concat"
	"github.com/wippyai/concat-runtime/errors"
)

// textAlign is the alignment of text buffers.
const textAlign = 1

type slot struct {
	obj   any
	elems []concat.Ref
	d     float64
	l     int64
	ptr   uint32
	len   uint32
	cap   uint32
	kind  Kind
	b     bool
	valid bool
}

// Store holds dynamic values and implements concat.Host.
type Store struct {
	mem       concatrt.Memory
	alloc     concatrt.Reallocator
	slots     []slot
	freeList  []concat.Ref
	observers []Observer
}

// NewStore creates a store whose text lives in mem and is allocated by alloc.
func NewStore(mem concatrt.Memory, alloc concatrt.Reallocator) *Store {
	return &Store{
		mem:      mem,
		alloc:    alloc,
		slots:    make([]slot, 0, 64),
		freeList: make([]concat.Ref, 0, 16),
	}
}

// Subscribe adds an observer for lifecycle events.
func (s *Store) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Unsubscribe removes an observer.
func (s *Store) Unsubscribe(o Observer) {
	for i, obs := range s.observers {
		if obs == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *Store) notify(e Event) {
	for _, o := range s.observers {
		o.OnValueEvent(e)
	}
}

func (s *Store) insert(v slot) concat.Ref {
	v.valid = true
	if n := len(s.freeList); n > 0 {
		ref := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.slots[ref-1] = v
		return ref
	}
	s.slots = append(s.slots, v)
	return concat.Ref(len(s.slots))
}

func (s *Store) get(ref concat.Ref) (*slot, error) {
	if ref == 0 || int(ref) > len(s.slots) || !s.slots[ref-1].valid {
		return nil, errors.NotFound(errors.PhaseHost, "value", FormatLong(int64(ref)))
	}
	return &s.slots[ref-1], nil
}

// NewNull creates a null value.
func (s *Store) NewNull() concat.Ref {
	return s.insert(slot{kind: KindNull})
}

// NewBool creates a boolean value.
func (s *Store) NewBool(v bool) concat.Ref {
	return s.insert(slot{kind: KindBool, b: v})
}

// NewLong creates an integer value.
func (s *Store) NewLong(v int64) concat.Ref {
	return s.insert(slot{kind: KindLong, l: v})
}

// NewDouble creates a floating point value.
func (s *Store) NewDouble(v float64) concat.Ref {
	return s.insert(slot{kind: KindDouble, d: v})
}

// NewArray creates an array value holding elems.
func (s *Store) NewArray(elems ...concat.Ref) concat.Ref {
	return s.insert(slot{kind: KindArray, elems: elems})
}

// NewObject creates an object value. Objects implementing fmt.Stringer
// convert to their String(); others cannot be converted to text.
func (s *Store) NewObject(v any) concat.Ref {
	return s.insert(slot{kind: KindObject, obj: v})
}

// NewString creates a string value, copying str into linear memory.
func (s *Store) NewString(str string) (concat.Ref, error) {
	ptr, size, err := s.writeText(str)
	if err != nil {
		return 0, err
	}
	return s.insert(slot{kind: KindString, ptr: ptr, len: uint32(len(str)), cap: size}), nil
}

// SetString replaces the value of ref with str.
func (s *Store) SetString(ref concat.Ref, str string) error {
	v, err := s.get(ref)
	if err != nil {
		return err
	}
	ptr, size, err := s.writeText(str)
	if err != nil {
		return err
	}
	s.clear(v)
	v.kind, v.ptr, v.len, v.cap = KindString, ptr, uint32(len(str)), size
	return nil
}

// SetLong replaces the value of ref with an integer.
func (s *Store) SetLong(ref concat.Ref, n int64) error {
	v, err := s.get(ref)
	if err != nil {
		return err
	}
	s.clear(v)
	v.kind, v.l = KindLong, n
	return nil
}

// writeText allocates len(str)+1 bytes and writes str followed by NUL.
func (s *Store) writeText(str string) (uint32, uint32, error) {
	if uint64(len(str)) >= concat.DefaultMaxLength {
		return 0, 0, errors.Overflow(errors.PhaseHost, nil, len(str), "max length")
	}
	size := uint32(len(str)) + 1
	ptr, err := s.alloc.Alloc(size, textAlign)
	if err != nil {
		return 0, 0, err
	}
	if len(str) > 0 {
		if err := s.mem.Write(ptr, unsafe.Slice(unsafe.StringData(str), len(str))); err != nil {
			s.alloc.Free(ptr, size, textAlign)
			return 0, 0, err
		}
	}
	if err := s.mem.WriteU8(ptr+uint32(len(str)), 0); err != nil {
		s.alloc.Free(ptr, size, textAlign)
		return 0, 0, err
	}
	return ptr, size, nil
}

// clear releases the payload of v, leaving the slot valid.
func (s *Store) clear(v *slot) {
	if v.kind == KindString && v.ptr != 0 {
		s.alloc.Free(v.ptr, v.cap, textAlign)
	}
	valid := v.valid
	*v = slot{valid: valid}
}

// Drop releases ref and its text buffer. Array elements are not dropped.
func (s *Store) Drop(ref concat.Ref) bool {
	v, err := s.get(ref)
	if err != nil {
		return false
	}
	ptr, size := v.ptr, v.cap
	s.clear(v)
	v.valid = false
	s.freeList = append(s.freeList, ref)
	s.notify(Event{Type: EventDropped, Ref: ref, Ptr: ptr, Size: size})
	return true
}

// Len returns the number of live values.
func (s *Store) Len() int {
	return len(s.slots) - len(s.freeList)
}

// TypeOf returns the value kind of ref.
func (s *Store) TypeOf(ref concat.Ref) (Kind, bool) {
	v, err := s.get(ref)
	if err != nil {
		return 0, false
	}
	return v.kind, true
}

// Text returns a copy of the text of a string value.
func (s *Store) Text(ref concat.Ref) (string, error) {
	view, err := s.TextView(ref)
	if err != nil {
		return "", err
	}
	data, err := s.mem.Read(view.Ptr, view.Len)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Render returns the text form of any value without touching memory.
func (s *Store) Render(ref concat.Ref) (string, error) {
	v, err := s.get(ref)
	if err != nil {
		return "", err
	}
	if v.kind == KindString {
		return s.Text(ref)
	}
	return render(v)
}

// Capacity returns the buffer size of a string value.
func (s *Store) Capacity(ref concat.Ref) (uint32, bool) {
	v, err := s.get(ref)
	if err != nil || v.kind != KindString {
		return 0, false
	}
	return v.cap, true
}

// Memory implements concat.Host.
func (s *Store) Memory() concatrt.Memory {
	return s.mem
}

// Kind implements concat.Host.
func (s *Store) Kind(ref concat.Ref) concat.Kind {
	v, err := s.get(ref)
	if err == nil && v.kind == KindString {
		return concat.KindText
	}
	return concat.KindOther
}

// TextView implements concat.Host.
func (s *Store) TextView(ref concat.Ref) (concat.TextView, error) {
	v, err := s.get(ref)
	if err != nil {
		return concat.TextView{}, err
	}
	if v.kind != KindString {
		return concat.TextView{}, errors.NotText(errors.PhaseHost, v.kind.String())
	}
	return concat.TextView{Ptr: v.ptr, Len: v.len}, nil
}

// CoerceToText implements concat.Host.
func (s *Store) CoerceToText(ref concat.Ref) (concat.OwnedText, error) {
	v, err := s.get(ref)
	if err != nil {
		return concat.OwnedText{}, err
	}
	var str string
	if v.kind == KindString {
		str, err = s.Text(ref)
	} else {
		str, err = render(v)
	}
	if err != nil {
		return concat.OwnedText{}, err
	}
	ptr, size, err := s.writeText(str)
	if err != nil {
		return concat.OwnedText{}, err
	}
	s.notify(Event{Type: EventCoerced, Ref: ref, Ptr: ptr, Size: size})
	return concat.OwnedText{Ptr: ptr, Len: uint32(len(str)), Cap: size}, nil
}

// Dispose implements concat.Host.
func (s *Store) Dispose(t concat.OwnedText) {
	s.alloc.Free(t.Ptr, t.Cap, textAlign)
	s.notify(Event{Type: EventDisposed, Ptr: t.Ptr, Size: t.Cap})
}

// AdoptText implements concat.Host.
func (s *Store) AdoptText(dst concat.Ref, t concat.OwnedText) error {
	v, err := s.get(dst)
	if err != nil {
		return err
	}
	s.clear(v)
	v.kind, v.ptr, v.len, v.cap = KindString, t.Ptr, t.Len, t.Cap
	s.notify(Event{Type: EventAdopted, Ref: dst, Ptr: t.Ptr, Size: t.Cap})
	return nil
}

// AllocBuffer implements concat.Host.
func (s *Store) AllocBuffer(size uint32) (concat.Buffer, error) {
	ptr, err := s.alloc.Alloc(size, textAlign)
	if err != nil {
		return concat.Buffer{}, err
	}
	s.notify(Event{Type: EventAllocated, Ptr: ptr, Size: size})
	return concat.Buffer{Ptr: ptr, Cap: size}, nil
}

// GrowBuffer implements concat.Host.
func (s *Store) GrowBuffer(dst concat.Ref, size uint32) (concat.Buffer, error) {
	v, err := s.get(dst)
	if err != nil {
		return concat.Buffer{}, err
	}
	if v.kind != KindString {
		return concat.Buffer{}, errors.NotText(errors.PhaseHost, v.kind.String())
	}
	if size <= v.cap {
		return concat.Buffer{Ptr: v.ptr, Cap: v.cap}, nil
	}
	ptr, err := s.alloc.Realloc(v.ptr, v.cap, textAlign, size)
	if err != nil {
		return concat.Buffer{}, err
	}
	v.ptr, v.cap = ptr, size
	s.notify(Event{Type: EventGrown, Ref: dst, Ptr: ptr, Size: size})
	return concat.Buffer{Ptr: ptr, Cap: size}, nil
}

// FinalizeAsText implements concat.Host. A replaced text buffer is freed.
func (s *Store) FinalizeAsText(dst concat.Ref, buf concat.Buffer, length uint32) error {
	v, err := s.get(dst)
	if err != nil {
		return err
	}
	if length >= buf.Cap {
		return errors.OutOfBounds(errors.PhaseFinalize, buf.Ptr, length+1, buf.Cap)
	}
	if v.kind == KindString && v.ptr == buf.Ptr {
		v.len, v.cap = length, buf.Cap
	} else {
		s.clear(v)
		v.kind, v.ptr, v.len, v.cap = KindString, buf.Ptr, length, buf.Cap
	}
	s.notify(Event{Type: EventFinalized, Ref: dst, Ptr: buf.Ptr, Size: length})
	return nil
}

var _ concat.Host = (*Store)(nil)
