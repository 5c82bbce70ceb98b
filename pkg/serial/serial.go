// Package serial converts raw record values into JSON-safe scalars.
package serial

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"f1databridge/pkg/frame"
	"f1databridge/pkg/helper"
)

// IsMissing reports whether v stands for "no data": nil, frame.NA, a nil
// pointer, a non-finite float or the zero time.
func IsMissing(v any) bool {
	if v == nil || v == any(frame.NA) {
		return true
	}
	switch x := v.(type) {
	case float64:
		return math.IsNaN(x) || math.IsInf(x, 0)
	case float32:
		f := float64(x)
		return math.IsNaN(f) || math.IsInf(f, 0)
	case time.Time:
		return x.IsZero()
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// JSONSerial returns a JSON-safe representation of one scalar.
func JSONSerial(v any) any {
	if IsMissing(v) {
		return nil
	}
	switch x := v.(type) {
	case time.Time:
		return helper.ISOFormat(x)
	case time.Duration:
		return helper.FormatTimedelta(x)
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		if uint64(x) > math.MaxInt64 {
			return uint64(x)
		}
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return x
		}
		return int64(x)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return JSONSerial(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}

// Record maps every value of rec through JSONSerial.
func Record(rec frame.Record) frame.Record {
	return rec.Map(JSONSerial)
}

// Records maps a slice of records, always returning a non-nil slice.
func Records(recs []frame.Record) []frame.Record {
	out := make([]frame.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Record(rec))
	}
	return out
}
