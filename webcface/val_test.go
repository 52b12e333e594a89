package webcface

import (
	"math"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestValOf(t *testing.T) {
	assert.Equal(t, ValOf(nil).Type(), ValTypeNone)
	assert.Equal(t, ValOf(3).Type(), ValTypeInt)
	assert.Equal(t, ValOf(uint8(3)).Any(), int64(3))
	assert.Equal(t, ValOf(int8(-3)).Any(), int64(-3))
	assert.Equal(t, ValOf(float32(1.5)).Any(), float64(1.5))
	assert.Equal(t, ValOf(true).Type(), ValTypeBool)
	assert.Equal(t, ValOf("x").Type(), ValTypeString)
	assert.Equal(t, ValOf([]byte("abc")).Any(), "abc")
	assert.Equal(t, ValOf(ValOf(2)).Any(), int64(2))
	// uints past the int range keep their magnitude
	assert.Equal(t, ValOf(uint64(1<<63)).Type(), ValTypeFloat)
}

func TestValConvert(t *testing.T) {
	assert.Equal(t, ValOf(2.9).Int(), int64(2))
	assert.Equal(t, ValOf(-2.9).Int(), int64(-2))
	assert.Equal(t, ValOf("3.5").Float(), 3.5)
	assert.Equal(t, ValOf("nope").Float(), 0.0)
	assert.Equal(t, ValOf(true).Float(), 1.0)
	assert.Equal(t, ValOf(int64(1<<62)).Int(), int64(1<<62))

	assert.Equal(t, ValOf("false").Bool(), false)
	assert.Equal(t, ValOf("0").Bool(), false)
	assert.Equal(t, ValOf("abc").Bool(), true)
	assert.Equal(t, ValOf("").Bool(), false)
	assert.Equal(t, ValOf(0.0).Bool(), false)
	assert.Equal(t, ValOf(2).Bool(), true)

	assert.Equal(t, ValOf(1.5).String(), "1.5")
	assert.Equal(t, ValOf(10).String(), "10")
	assert.Equal(t, ValOf(false).String(), "false")
	assert.Equal(t, ValOf(nil).String(), "")
}

func TestValCoerce(t *testing.T) {
	v, err := ValOf(2.7).Coerce(ValTypeInt)
	assert.Equal(t, err, nil)
	assert.Equal(t, v.Any(), int64(2))

	v, err = ValOf("4").Coerce(ValTypeFloat)
	assert.Equal(t, err, nil)
	assert.Equal(t, v.Any(), 4.0)

	v, err = ValOf(1).Coerce(ValTypeString)
	assert.Equal(t, err, nil)
	assert.Equal(t, v.Any(), "1")

	v, err = ValOf("yes").Coerce(ValTypeBool)
	assert.Equal(t, err, nil)
	assert.Equal(t, v.Any(), true)

	v, err = ValOf("as is").Coerce(ValTypeNone)
	assert.Equal(t, err, nil)
	assert.Equal(t, v.Any(), "as is")

	_, err = ValOf("x").Coerce(ValTypeInt)
	assert.NotEqual(t, err, nil)
}

func TestValCoerceIntRange(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 1e30, -1e30, 1 << 63} {
		_, err := ValOf(f).Coerce(ValTypeInt)
		assert.NotEqual(t, err, nil)
		assert.Equal(t, ValOf(f).Int(), int64(0))
	}

	v, err := ValOf(float64(-(1 << 63))).Coerce(ValTypeInt)
	assert.Equal(t, err, nil)
	assert.Equal(t, v.Any(), int64(math.MinInt64))

	_, err = ValOf("NaN").Coerce(ValTypeInt)
	assert.NotEqual(t, err, nil)
}
