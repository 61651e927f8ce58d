package history

import (
	"fmt"
	"sort"

	"microsimcore/simerr"
)

// Date is an ordinal date: any monotonically increasing integer timeline
// (e.g. days since an epoch). Histories only ever compare dates, so no
// calendar library is needed here.
type Date int64

// Numeric is the set of scalar types a History or ObjectVector can hold.
type Numeric interface {
	~float64 | ~float32 | ~int8 | ~int16 | ~int32 | ~uint8 | ~uint16 | ~uint32
}

func kindOf[T Numeric](zero T) Kind {
	switch any(zero).(type) {
	case float64:
		return KindF64
	case float32:
		return KindF32
	case int8:
		return KindI8
	case int16:
		return KindI16
	case int32:
		return KindI32
	case uint8:
		return KindU8
	case uint16:
		return KindU16
	case uint32:
		return KindU32
	default:
		return KindNone
	}
}

// HistoryData is the pure-data serialization form of a History: a type tag,
// a name, parallel date/value slices, and the values packed into an
// ObjectVector matching the tag's scalar type (averisera's HistoryData dump
// format).
type HistoryData struct {
	FactoryType string
	Name        string
	Dates       []Date
	Values      ObjectVector
}

// Dense is a chronologically sorted sequence of (date, value) events
// (averisera's HistoryTimeSeries<V>).
type Dense[T Numeric] struct {
	name   string
	dates  []Date
	values []T
}

// NewDense builds an empty dense history.
func NewDense[T Numeric](name string) *Dense[T] {
	return &Dense[T]{name: name}
}

func (h *Dense[T]) Name() string { return h.name }
func (h *Dense[T]) Empty() bool  { return len(h.dates) == 0 }
func (h *Dense[T]) Size() int    { return len(h.dates) }

// Append requires date to be strictly after the current last date.
func (h *Dense[T]) Append(date Date, value T) error {
	if len(h.dates) > 0 && date <= h.dates[len(h.dates)-1] {
		return fmt.Errorf("history: append date %d not after last date %d: %w", date, h.dates[len(h.dates)-1], simerr.ErrInvalidArgument)
	}
	h.dates = append(h.dates, date)
	h.values = append(h.values, value)
	return nil
}

// Correct replaces the last stored value, leaving its date unchanged.
func (h *Dense[T]) Correct(value T) error {
	if h.Empty() {
		return fmt.Errorf("history: correct on empty history: %w", simerr.ErrNoData)
	}
	h.values[len(h.values)-1] = value
	return nil
}

func (h *Dense[T]) FirstDate() (Date, error) {
	if h.Empty() {
		return 0, fmt.Errorf("history: first date of empty history: %w", simerr.ErrNoData)
	}
	return h.dates[0], nil
}

func (h *Dense[T]) LastDate() (Date, error) {
	if h.Empty() {
		return 0, fmt.Errorf("history: last date of empty history: %w", simerr.ErrNoData)
	}
	return h.dates[len(h.dates)-1], nil
}

// LastDateAsOf returns the last event date on or before asof.
func (h *Dense[T]) LastDateAsOf(asof Date) (Date, error) {
	idx, err := h.lastIndexAsOf(asof)
	if err != nil {
		return 0, err
	}
	return h.dates[idx], nil
}

func (h *Dense[T]) DateAt(idx int) (Date, error) {
	if idx < 0 || idx >= len(h.dates) {
		return 0, fmt.Errorf("history: index %d out of range (size %d): %w", idx, len(h.dates), simerr.ErrOutOfRange)
	}
	return h.dates[idx], nil
}

func (h *Dense[T]) ValueAt(idx int) (T, error) {
	var zero T
	if idx < 0 || idx >= len(h.values) {
		return zero, fmt.Errorf("history: index %d out of range (size %d): %w", idx, len(h.values), simerr.ErrOutOfRange)
	}
	return h.values[idx], nil
}

// ValueAtDate returns the value of the event exactly on date, if any.
func (h *Dense[T]) ValueAtDate(date Date) (T, bool) {
	i := sort.Search(len(h.dates), func(i int) bool { return h.dates[i] >= date })
	var zero T
	if i < len(h.dates) && h.dates[i] == date {
		return h.values[i], true
	}
	return zero, false
}

// LastValue returns the most recently appended value.
func (h *Dense[T]) LastValue() (T, error) {
	var zero T
	if h.Empty() {
		return zero, fmt.Errorf("history: last value of empty history: %w", simerr.ErrNoData)
	}
	return h.values[len(h.values)-1], nil
}

// LastValueAsOf returns the last value on or before asof.
func (h *Dense[T]) LastValueAsOf(asof Date) (T, error) {
	var zero T
	idx, err := h.lastIndexAsOf(asof)
	if err != nil {
		return zero, err
	}
	return h.values[idx], nil
}

func (h *Dense[T]) lastIndexAsOf(asof Date) (int, error) {
	i := sort.Search(len(h.dates), func(i int) bool { return h.dates[i] > asof })
	if i == 0 {
		return 0, fmt.Errorf("history: no dates on or before %d: %w", asof, simerr.ErrNoData)
	}
	return i - 1, nil
}

// LastIndex returns the index of the last event on or before asof.
func (h *Dense[T]) LastIndex(asof Date) (int, error) {
	return h.lastIndexAsOf(asof)
}

// FirstIndex returns the index of the first event on or after asof.
func (h *Dense[T]) FirstIndex(asof Date) (int, error) {
	i := sort.Search(len(h.dates), func(i int) bool { return h.dates[i] >= asof })
	if i >= len(h.dates) {
		return 0, fmt.Errorf("history: no dates on or after %d: %w", asof, simerr.ErrNoData)
	}
	return i, nil
}

// ToData converts the history to its pure-data serialization form.
func (h *Dense[T]) ToData() (HistoryData, error) {
	var zero T
	kind := kindOf(zero)
	ov, err := NewObjectVector(kind)
	if err != nil {
		return HistoryData{}, err
	}
	for _, v := range h.values {
		if err := ov.PushBack(float64(v)); err != nil {
			return HistoryData{}, err
		}
	}
	dates := make([]Date, len(h.dates))
	copy(dates, h.dates)
	return HistoryData{
		FactoryType: "dense " + kind.String(),
		Name:        h.name,
		Dates:       dates,
		Values:      ov,
	}, nil
}

// Sparse wraps a Dense history plus a "logical last date". Append stores a
// new value only if it differs from the most recently stored one;
// otherwise it just advances the logical last date. Reads for dates beyond
// the logical last fail with ErrNoData; for dates on or before it, they
// return the last stored value at or before the requested date (averisera's
// HistorySparse).
type Sparse[T Numeric] struct {
	impl     *Dense[T]
	lastDate Date
	hasLast  bool
}

// NewSparse builds an empty sparse history.
func NewSparse[T Numeric](name string) *Sparse[T] {
	return &Sparse[T]{impl: NewDense[T](name)}
}

func (s *Sparse[T]) Name() string { return s.impl.Name() }
func (s *Sparse[T]) Empty() bool  { return s.impl.Empty() }
func (s *Sparse[T]) Size() int    { return s.impl.Size() }

func (s *Sparse[T]) Append(date Date, value T) error {
	if s.hasLast && date <= s.lastDate {
		return fmt.Errorf("history: sparse append date %d on or before last date %d: %w", date, s.lastDate, simerr.ErrInvalidArgument)
	}
	s.lastDate = date
	s.hasLast = true
	if s.impl.Empty() {
		return s.impl.Append(date, value)
	}
	last, err := s.impl.LastValue()
	if err != nil {
		return err
	}
	if last != value {
		return s.impl.Append(date, value)
	}
	return nil
}

func (s *Sparse[T]) Correct(value T) error { return s.impl.Correct(value) }

func (s *Sparse[T]) FirstDate() (Date, error) { return s.impl.FirstDate() }

func (s *Sparse[T]) LastDate() (Date, error) {
	if !s.hasLast {
		return 0, fmt.Errorf("history: last date of empty sparse history: %w", simerr.ErrNoData)
	}
	return s.lastDate, nil
}

func (s *Sparse[T]) LastDateAsOf(asof Date) (Date, error) {
	if s.hasLast && asof <= s.lastDate {
		return s.impl.LastDateAsOf(asof)
	}
	return s.LastDate()
}

// ValueAtDate returns the value in effect on date: the last stored value at
// or before date, as long as date is within the logical history.
func (s *Sparse[T]) ValueAtDate(date Date) (T, bool) {
	var zero T
	if !s.hasLast || date > s.lastDate {
		return zero, false
	}
	v, err := s.impl.LastValueAsOf(date)
	if err != nil {
		return zero, false
	}
	return v, true
}

func (s *Sparse[T]) LastValue() (T, error) { return s.impl.LastValue() }

func (s *Sparse[T]) LastValueAsOf(asof Date) (T, error) {
	if !s.hasLast || asof > s.lastDate {
		var zero T
		return zero, fmt.Errorf("history: sparse read at %d beyond logical last date: %w", asof, simerr.ErrNoData)
	}
	return s.impl.LastValueAsOf(asof)
}

func (s *Sparse[T]) DateAt(idx int) (Date, error)      { return s.impl.DateAt(idx) }
func (s *Sparse[T]) ValueAt(idx int) (T, error)        { return s.impl.ValueAt(idx) }
func (s *Sparse[T]) FirstIndex(asof Date) (int, error) { return s.impl.FirstIndex(asof) }
func (s *Sparse[T]) LastIndex(asof Date) (int, error)  { return s.impl.LastIndex(asof) }

func (s *Sparse[T]) ToData() (HistoryData, error) {
	data, err := s.impl.ToData()
	if err != nil {
		return HistoryData{}, err
	}
	data.FactoryType = "sparse " + data.Values.Kind().String()
	return data, nil
}
