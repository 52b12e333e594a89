package webcface

import (
	"fmt"
	"math"
	"strconv"
)

type ValType int

const (
	ValTypeNone   ValType = 0
	ValTypeString ValType = 1
	ValTypeBool   ValType = 2
	ValTypeInt    ValType = 3
	ValTypeFloat  ValType = 4
)

func (self ValType) String() string {
	switch self {
	case ValTypeNone:
		return "none"
	case ValTypeString:
		return "string"
	case ValTypeBool:
		return "bool"
	case ValTypeInt:
		return "int"
	case ValTypeFloat:
		return "float"
	default:
		return fmt.Sprintf("ValType(%d)", int(self))
	}
}

// a loosely typed scalar as it crosses the wire.
// holds nil, bool, int64, float64 or string.
type Val struct {
	value any
}

func ValOf(value any) Val {
	switch v := value.(type) {
	case nil:
		return Val{}
	case Val:
		return v
	case bool:
		return Val{value: v}
	case string:
		return Val{value: v}
	case float64:
		return Val{value: v}
	case float32:
		return Val{value: float64(v)}
	case int:
		return Val{value: int64(v)}
	case int8:
		return Val{value: int64(v)}
	case int16:
		return Val{value: int64(v)}
	case int32:
		return Val{value: int64(v)}
	case int64:
		return Val{value: v}
	case uint:
		return valOfUint(uint64(v))
	case uint8:
		return Val{value: int64(v)}
	case uint16:
		return Val{value: int64(v)}
	case uint32:
		return Val{value: int64(v)}
	case uint64:
		return valOfUint(v)
	case []byte:
		return Val{value: string(v)}
	default:
		return Val{value: fmt.Sprint(v)}
	}
}

func valOfUint(v uint64) Val {
	if v <= math.MaxInt64 {
		return Val{value: int64(v)}
	}
	return Val{value: float64(v)}
}

func valsOf(values []any) []Val {
	vals := make([]Val, len(values))
	for i, value := range values {
		vals[i] = ValOf(value)
	}
	return vals
}

func wireVals(vals []Val) []any {
	values := make([]any, len(vals))
	for i, val := range vals {
		values[i] = val.Any()
	}
	return values
}

func (self Val) Any() any {
	return self.value
}

func (self Val) IsNone() bool {
	return self.value == nil
}

func (self Val) Type() ValType {
	switch self.value.(type) {
	case bool:
		return ValTypeBool
	case int64:
		return ValTypeInt
	case float64:
		return ValTypeFloat
	case string:
		return ValTypeString
	default:
		return ValTypeNone
	}
}

func (self Val) Float() float64 {
	f, _ := self.toFloat()
	return f
}

func (self Val) toFloat() (float64, error) {
	switch v := self.value.(type) {
	case nil:
		return 0, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("could not convert %T to float", v)
	}
}

// truncates toward zero
func (self Val) Int() int64 {
	i, _ := self.toInt()
	return i
}

func (self Val) toInt() (int64, error) {
	if i, ok := self.value.(int64); ok {
		return i, nil
	}
	f, err := self.toFloat()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("could not convert %v to int", f)
	}
	f = math.Trunc(f)
	if f < -(1<<63) || 1<<63 <= f {
		return 0, fmt.Errorf("%v is out of the int range", f)
	}
	return int64(f), nil
}

// strings parse as bools when they can, otherwise any non empty string is true
func (self Val) Bool() bool {
	switch v := self.value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		return v != ""
	default:
		return false
	}
}

func (self Val) String() string {
	switch v := self.value.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// converts to the declared type of a func argument or return value.
// none passes the value through.
func (self Val) Coerce(valType ValType) (Val, error) {
	switch valType {
	case ValTypeInt:
		i, err := self.toInt()
		if err != nil {
			return Val{}, err
		}
		return Val{value: i}, nil
	case ValTypeFloat:
		f, err := self.toFloat()
		if err != nil {
			return Val{}, err
		}
		return Val{value: f}, nil
	case ValTypeBool:
		return Val{value: self.Bool()}, nil
	case ValTypeString:
		return Val{value: self.String()}, nil
	default:
		return self, nil
	}
}
