package serialization

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/naminet-ml/naminet/internal/nn"
)

// Protobuf field numbers of the Snapshot message.
//
//	message Snapshot {
//	  repeated int64  sizes            = 1 [packed = true];
//	  repeated double dropout_rates    = 2 [packed = true];
//	  string          optimizer        = 3;
//	  repeated Entry  optimizer_config = 4; // value in field 3
//	  repeated Layer  layers           = 5;
//	  string          run_id           = 6;
//	  int64           created_at_ns    = 7;
//	  repeated Entry  metadata         = 8; // value in field 2
//	  string          naminet_version  = 9;
//	}
const (
	fieldSizes           protowire.Number = 1
	fieldDropout         protowire.Number = 2
	fieldOptimizer       protowire.Number = 3
	fieldOptimizerConfig protowire.Number = 4
	fieldLayers          protowire.Number = 5
	fieldRunID           protowire.Number = 6
	fieldCreatedAt       protowire.Number = 7
	fieldMetadata        protowire.Number = 8
	fieldVersion         protowire.Number = 9
)

// Layer message fields. Buffers 5-10 follow the order of layerTensors.
const (
	fieldLayerInput  protowire.Number = 1
	fieldLayerOutput protowire.Number = 2
	fieldLayerIsLast protowire.Number = 3
	fieldLayerStep   protowire.Number = 4
	fieldLayerBuffer protowire.Number = 5
)

// Entry message fields.
const (
	fieldEntryKey    protowire.Number = 1
	fieldEntryString protowire.Number = 2
	fieldEntryDouble protowire.Number = 3
)

// MarshalProto encodes state in the protobuf wire format. Run id, creation
// time and metadata are taken from h.
func MarshalProto(state *nn.NetworkState, h *Header) ([]byte, error) {
	if state == nil || len(state.Layers) == 0 {
		return nil, ErrEmptyState
	}

	var b []byte
	b = appendPackedInts(b, fieldSizes, state.Sizes)
	b = appendPackedDoubles(b, fieldDropout, state.DropoutRates)
	b = appendString(b, fieldOptimizer, state.Optimizer)
	for _, k := range sortedKeys(state.OptimizerConfig) {
		var e []byte
		e = appendString(e, fieldEntryKey, k)
		e = protowire.AppendTag(e, fieldEntryDouble, protowire.Fixed64Type)
		e = protowire.AppendFixed64(e, math.Float64bits(state.OptimizerConfig[k]))
		b = protowire.AppendTag(b, fieldOptimizerConfig, protowire.BytesType)
		b = protowire.AppendBytes(b, e)
	}
	for i := range state.Layers {
		b = protowire.AppendTag(b, fieldLayers, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalLayer(&state.Layers[i]))
	}

	if h != nil {
		b = appendString(b, fieldRunID, h.RunID)
		b = protowire.AppendTag(b, fieldCreatedAt, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(h.CreatedAt.UnixNano())) //nolint:gosec // G115: decoded back to int64
		for _, k := range sortedKeys(h.Metadata) {
			var e []byte
			e = appendString(e, fieldEntryKey, k)
			e = appendString(e, fieldEntryString, h.Metadata[k])
			b = protowire.AppendTag(b, fieldMetadata, protowire.BytesType)
			b = protowire.AppendBytes(b, e)
		}
		b = appendString(b, fieldVersion, h.NamiNetVersion)
	}
	return b, nil
}

func marshalLayer(l *nn.LayerState) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldLayerInput, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(l.InputSize))
	b = protowire.AppendTag(b, fieldLayerOutput, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(l.OutputSize))
	b = protowire.AppendTag(b, fieldLayerIsLast, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(l.Output))
	b = protowire.AppendTag(b, fieldLayerStep, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(l.Step))
	for i, lt := range layerTensors {
		b = appendPackedDoubles(b, fieldLayerBuffer+protowire.Number(i), *lt.values(l))
	}
	return b
}

// UnmarshalProto decodes a snapshot written by MarshalProto. The returned
// header carries no tensor table.
func UnmarshalProto(data []byte) (*nn.NetworkState, *Header, error) {
	state := &nn.NetworkState{OptimizerConfig: make(map[string]float64)}
	h := &Header{FormatVersion: FormatVersion, Metadata: make(map[string]string)}

	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldSizes && (typ == protowire.BytesType || typ == protowire.VarintType):
			return consumeInts(b, typ, &state.Sizes)
		case num == fieldDropout && (typ == protowire.BytesType || typ == protowire.Fixed64Type):
			return consumeDoubles(b, typ, &state.DropoutRates)
		case num == fieldOptimizer && typ == protowire.BytesType:
			return consumeString(b, &state.Optimizer)
		case num == fieldOptimizerConfig && typ == protowire.BytesType:
			return consumeEntry(b, func(k, _ string, v float64) { state.OptimizerConfig[k] = v })
		case num == fieldLayers && typ == protowire.BytesType:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			l, err := unmarshalLayer(msg)
			if err != nil {
				return 0, fmt.Errorf("layer %d: %w", len(state.Layers), err)
			}
			state.Layers = append(state.Layers, l)
			return n, nil
		case num == fieldRunID && typ == protowire.BytesType:
			return consumeString(b, &h.RunID)
		case num == fieldCreatedAt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			h.CreatedAt = time.Unix(0, int64(v)).UTC() //nolint:gosec // G115: round-trips UnixNano
			return n, nil
		case num == fieldMetadata && typ == protowire.BytesType:
			return consumeEntry(b, func(k, v string, _ float64) { h.Metadata[k] = v })
		case num == fieldVersion && typ == protowire.BytesType:
			return consumeString(b, &h.NamiNetVersion)
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	if err != nil {
		return nil, nil, err
	}
	if len(state.Layers) == 0 {
		return nil, nil, ErrEmptyState
	}
	if len(state.Layers) != len(state.Sizes)-1 {
		return nil, nil, fmt.Errorf("%w: %d sizes for %d layers", ErrMalformedProto, len(state.Sizes), len(state.Layers))
	}
	for i := range state.Layers {
		if err := checkLayerBuffers(&state.Layers[i], state.Sizes[i], state.Sizes[i+1]); err != nil {
			return nil, nil, fmt.Errorf("%w: layer %d: %w", ErrMalformedProto, i, err)
		}
	}

	h.Sizes = append([]int(nil), state.Sizes...)
	h.DropoutRates = append([]float64(nil), state.DropoutRates...)
	h.Optimizer = state.Optimizer
	h.OptimizerConfig = state.OptimizerConfig
	h.Steps = make([]int, len(state.Layers))
	for i, l := range state.Layers {
		h.Steps[i] = l.Step
	}
	return state, h, nil
}

// checkLayerBuffers verifies that l matches the in x out layer its sizes
// declare. Lengths are compared by division so huge sizes cannot overflow.
func checkLayerBuffers(l *nn.LayerState, in, out int) error {
	if in <= 0 || out <= 0 || l.InputSize != in || l.OutputSize != out {
		return fmt.Errorf("layer is %dx%d, sizes say %dx%d", l.OutputSize, l.InputSize, out, in)
	}
	for _, lt := range layerTensors {
		n := len(*lt.values(l))
		ok := n == out
		if lt.matrix {
			ok = n%out == 0 && n/out == in
		}
		if !ok {
			return fmt.Errorf("%s has %d values for shape %v", lt.suffix, n, tensorShape(lt, in, out))
		}
	}
	return nil
}

func unmarshalLayer(data []byte) (nn.LayerState, error) {
	var l nn.LayerState
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldLayerInput && typ == protowire.VarintType:
			return consumeInt(b, &l.InputSize)
		case num == fieldLayerOutput && typ == protowire.VarintType:
			return consumeInt(b, &l.OutputSize)
		case num == fieldLayerIsLast && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			l.Output = protowire.DecodeBool(v)
			return n, nil
		case num == fieldLayerStep && typ == protowire.VarintType:
			return consumeInt(b, &l.Step)
		case num >= fieldLayerBuffer && int(num-fieldLayerBuffer) < len(layerTensors) &&
			(typ == protowire.BytesType || typ == protowire.Fixed64Type):
			return consumeDoubles(b, typ, layerTensors[num-fieldLayerBuffer].values(&l))
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	return l, err
}

// consumeFields walks every field of a message. visit returns the number of
// value bytes it consumed, negative on a wire error.
func consumeFields(data []byte, visit func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformedProto, protowire.ParseError(n))
		}
		data = data[n:]

		m, err := visit(num, typ, data)
		if err != nil {
			return err
		}
		if m < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformedProto, num, protowire.ParseError(m))
		}
		data = data[m:]
	}
	return nil
}

func consumeInt(b []byte, dst *int) (int, error) {
	v, n := protowire.ConsumeVarint(b)
	*dst = int(v) //nolint:gosec // G115: sizes and steps fit in int
	return n, nil
}

func consumeString(b []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	*dst = v
	return n, nil
}

// consumeInts accepts both packed and unpacked encodings. typ is either
// VarintType or BytesType.
func consumeInts(b []byte, typ protowire.Type, dst *[]int) (int, error) {
	if typ == protowire.VarintType {
		v, n := protowire.ConsumeVarint(b)
		*dst = append(*dst, int(v)) //nolint:gosec // G115: layer sizes fit in int
		return n, nil
	}
	packed, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	for len(packed) > 0 {
		v, m := protowire.ConsumeVarint(packed)
		if m < 0 {
			return m, nil
		}
		*dst = append(*dst, int(v)) //nolint:gosec // G115: layer sizes fit in int
		packed = packed[m:]
	}
	return n, nil
}

// consumeDoubles accepts both packed and unpacked encodings. typ is either
// Fixed64Type or BytesType.
func consumeDoubles(b []byte, typ protowire.Type, dst *[]float64) (int, error) {
	if typ == protowire.Fixed64Type {
		v, n := protowire.ConsumeFixed64(b)
		*dst = append(*dst, math.Float64frombits(v))
		return n, nil
	}
	packed, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	if len(packed)%bytesPerValue != 0 {
		return 0, fmt.Errorf("%w: packed double length %d", ErrMalformedProto, len(packed))
	}
	out := make([]float64, 0, len(*dst)+len(packed)/bytesPerValue)
	out = append(out, *dst...)
	for len(packed) > 0 {
		v, m := protowire.ConsumeFixed64(packed)
		out = append(out, math.Float64frombits(v))
		packed = packed[m:]
	}
	*dst = out
	return n, nil
}

// consumeEntry decodes a key/value Entry message.
func consumeEntry(b []byte, set func(key, s string, d float64)) (int, error) {
	msg, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	var (
		key, s string
		d      float64
	)
	err := consumeFields(msg, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch {
		case num == fieldEntryKey && typ == protowire.BytesType:
			return consumeString(v, &key)
		case num == fieldEntryString && typ == protowire.BytesType:
			return consumeString(v, &s)
		case num == fieldEntryDouble && typ == protowire.Fixed64Type:
			bits, m := protowire.ConsumeFixed64(v)
			d = math.Float64frombits(bits)
			return m, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, v), nil
		}
	})
	if err != nil {
		return 0, err
	}
	set(key, s, d)
	return n, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendPackedInts(b []byte, num protowire.Number, xs []int) []byte {
	var packed []byte
	for _, x := range xs {
		packed = protowire.AppendVarint(packed, uint64(x)) //nolint:gosec // G115: sizes are positive
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func appendPackedDoubles(b []byte, num protowire.Number, xs []float64) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(len(xs)*bytesPerValue))
	for _, x := range xs {
		b = protowire.AppendFixed64(b, math.Float64bits(x))
	}
	return b
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
