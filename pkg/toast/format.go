package toast

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// DefaultFormat describes a change. Scalars render as
// "Data changed from <old> to <new>"; structs, maps, slices and arrays
// render as "Data updated: " followed by the new value as indented JSON.
func DefaultFormat[T any](newValue, oldValue T) string {
	if structured(newValue) {
		b, err := json.MarshalIndent(newValue, "", "  ")
		if err != nil {
			return fmt.Sprintf("Data updated: %+v", newValue)
		}
		return "Data updated: " + string(b)
	}
	return fmt.Sprintf("Data changed from %v to %v", oldValue, newValue)
}

func structured(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// Number is the set of types CounterFormat accepts.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// CounterFormat renders the delta and the current value:
// "Counter +3, current value: 5".
func CounterFormat[N Number](newValue, oldValue N) string {
	switch {
	case newValue > oldValue:
		return fmt.Sprintf("Counter +%v, current value: %v", newValue-oldValue, newValue)
	case newValue < oldValue:
		return fmt.Sprintf("Counter -%v, current value: %v", oldValue-newValue, newValue)
	default:
		return fmt.Sprintf("Counter 0, current value: %v", newValue)
	}
}

// FieldChangeFormat lists the keys whose values differ, one per line as
// "key: old → new", sorted by key. Keys missing on one side show as
// "(unset)".
func FieldChangeFormat[V comparable](newValue, oldValue map[string]V) string {
	keys := make([]string, 0, len(newValue))
	for k := range newValue {
		keys = append(keys, k)
	}
	for k := range oldValue {
		if _, ok := newValue[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var changes []string
	for _, k := range keys {
		nv, nok := newValue[k]
		ov, ook := oldValue[k]
		if nok && ook && nv == ov {
			continue
		}
		changes = append(changes, fmt.Sprintf("%s: %s → %s", k, fieldValue(ov, ook), fieldValue(nv, nok)))
	}

	if len(changes) == 0 {
		return "Data updated"
	}
	return "Data updated:\n" + strings.Join(changes, "\n")
}

func fieldValue[V any](v V, ok bool) string {
	if !ok {
		return "(unset)"
	}
	return fmt.Sprint(v)
}

// DelayedWatch returns options for a slow data monitor: changes wait
// delay before rendering and the notification lingers one second longer.
func DelayedWatch[T any](delay time.Duration) WatchOptions[T] {
	return WatchOptions[T]{
		Title:        "Data monitor",
		DebounceTime: delay,
		Duration:     Duration(delay + time.Second),
	}
}

// CounterWatch returns options that render numeric deltas.
func CounterWatch[N Number]() WatchOptions[N] {
	return WatchOptions[N]{
		Title:  "Counter updated",
		Format: CounterFormat[N],
	}
}

// FieldChangeWatch returns options that list changed map keys.
func FieldChangeWatch[V comparable]() WatchOptions[map[string]V] {
	return WatchOptions[map[string]V]{
		Title:  "Data changed",
		Format: FieldChangeFormat[V],
	}
}
