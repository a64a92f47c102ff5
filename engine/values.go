package engine

import (
	"strconv"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-builder/errors"
)

// EncodeArgs parses textual arguments into raw core values by type.
// Integers accept any base strconv understands and either signedness.
func EncodeArgs(types []api.ValueType, args []string) ([]uint64, error) {
	if len(types) != len(args) {
		return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Detail("expected %d arguments, got %d", len(types), len(args)).
			Build()
	}

	out := make([]uint64, len(args))
	for i, arg := range args {
		v, err := encodeArg(types[i], arg)
		if err != nil {
			return nil, errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
				Index(i).
				Value(arg).
				Cause(err).
				Detail("parse %s argument", api.ValueTypeName(types[i])).
				Build()
		}
		out[i] = v
	}
	return out, nil
}

func encodeArg(t api.ValueType, s string) (uint64, error) {
	switch t {
	case api.ValueTypeI32:
		if v, err := strconv.ParseInt(s, 0, 32); err == nil {
			return api.EncodeI32(int32(v)), nil
		}
		v, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return 0, err
		}
		return api.EncodeU32(uint32(v)), nil
	case api.ValueTypeI64:
		if v, err := strconv.ParseInt(s, 0, 64); err == nil {
			return api.EncodeI64(v), nil
		}
		return strconv.ParseUint(s, 0, 64)
	case api.ValueTypeF32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return 0, err
		}
		return api.EncodeF32(float32(v)), nil
	case api.ValueTypeF64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return api.EncodeF64(v), nil
	default:
		return 0, errors.Unsupported(errors.PhaseRuntime, "argument of type "+api.ValueTypeName(t))
	}
}

// FormatResults renders raw core values by type.
func FormatResults(types []api.ValueType, values []uint64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		var t api.ValueType
		if i < len(types) {
			t = types[i]
		}
		switch t {
		case api.ValueTypeI32:
			out[i] = strconv.FormatInt(int64(api.DecodeI32(v)), 10)
		case api.ValueTypeI64:
			out[i] = strconv.FormatInt(int64(v), 10)
		case api.ValueTypeF32:
			out[i] = strconv.FormatFloat(float64(api.DecodeF32(v)), 'g', -1, 32)
		case api.ValueTypeF64:
			out[i] = strconv.FormatFloat(api.DecodeF64(v), 'g', -1, 64)
		default:
			out[i] = "0x" + strconv.FormatUint(v, 16)
		}
	}
	return out
}
