package chttp

import (
	"encoding"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
)

// convertValue turns the raw string extracted from a request source into the parameter's target
// type. Callers only invoke it when a raw value is present; absence binds the zero value without
// ever reaching this function.
func convertValue[T any](raw string) (T, error) {
	var out T

	var err error

	switch p := any(&out).(type) {
	case *string:
		*p = raw
	case *bool:
		*p, err = cast.ToBoolE(raw)
	case *int:
		*p, err = cast.ToIntE(raw)
	case *int8:
		*p, err = cast.ToInt8E(raw)
	case *int16:
		*p, err = cast.ToInt16E(raw)
	case *int32:
		*p, err = cast.ToInt32E(raw)
	case *int64:
		*p, err = cast.ToInt64E(raw)
	case *uint:
		*p, err = cast.ToUintE(raw)
	case *uint8:
		*p, err = cast.ToUint8E(raw)
	case *uint16:
		*p, err = cast.ToUint16E(raw)
	case *uint32:
		*p, err = cast.ToUint32E(raw)
	case *uint64:
		*p, err = cast.ToUint64E(raw)
	case *float32:
		*p, err = cast.ToFloat32E(raw)
	case *float64:
		*p, err = cast.ToFloat64E(raw)
	case *time.Duration:
		*p, err = cast.ToDurationE(raw)
	case *time.Time:
		*p, err = cast.ToTimeE(raw)
	case encoding.TextUnmarshaler:
		err = p.UnmarshalText([]byte(raw))
	default:
		err = errors.Newf("unsupported parameter type %T", out)
	}

	if err != nil {
		return out, errors.Wrapf(err, "convert %q", raw)
	}

	return out, nil
}
