// SPDX-License-Identifier: MIT

// Package transport - block codec for the gRPC mesh.
//
// Wire layout (protobuf wire format, hand-encoded with protowire):
//
//	envelope {
//	  1: from  varint
//	  2: to    varint
//	  3: tag   varint
//	  4: seq   varint
//	  5: size  varint
//	  6: data  packed fixed64 (IEEE-754 bits, row-major)
//	}
//	ack {}
//
// Any protobuf decoder with the matching schema reads the same bytes.

package transport

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/katalvlaran/cannon/matrix"
)

// codecName is the gRPC content-subtype of the mesh.
const codecName = "cannon-block"

const (
	fieldFrom protowire.Number = 1
	fieldTo   protowire.Number = 2
	fieldTag  protowire.Number = 3
	fieldSeq  protowire.Number = 4
	fieldSize protowire.Number = 5
	fieldData protowire.Number = 6
)

// envelope is one block in flight.
type envelope struct {
	From  int
	To    int
	Tag   Tag
	Seq   uint64
	Block matrix.Block
}

// ack is the empty Deliver response.
type ack struct{}

// blockCodec implements google.golang.org/grpc/encoding.Codec for envelope and ack.
type blockCodec struct{}

func (blockCodec) Name() string { return codecName }

func (blockCodec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case *envelope:
		return marshalEnvelope(m), nil
	case *ack:
		return []byte{}, nil
	default:
		return nil, fmt.Errorf("Marshal %T: %w", v, ErrCodec)
	}
}

func (blockCodec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case *envelope:
		return unmarshalEnvelope(data, m)
	case *ack:
		return nil
	default:
		return fmt.Errorf("Unmarshal %T: %w", v, ErrCodec)
	}
}

// marshalEnvelope encodes e; the packed payload is preallocated in one go.
func marshalEnvelope(e *envelope) []byte {
	payload := len(e.Block.Data) * 8
	buf := make([]byte, 0, 6*binaryVarintMax+protowire.SizeBytes(payload))

	buf = protowire.AppendTag(buf, fieldFrom, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.From))
	buf = protowire.AppendTag(buf, fieldTo, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.To))
	buf = protowire.AppendTag(buf, fieldTag, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.Tag))
	buf = protowire.AppendTag(buf, fieldSeq, protowire.VarintType)
	buf = protowire.AppendVarint(buf, e.Seq)
	buf = protowire.AppendTag(buf, fieldSize, protowire.VarintType)
	buf = protowire.AppendVarint(buf, uint64(e.Block.Size))

	buf = protowire.AppendTag(buf, fieldData, protowire.BytesType)
	buf = protowire.AppendVarint(buf, uint64(payload))
	for _, v := range e.Block.Data {
		buf = protowire.AppendFixed64(buf, math.Float64bits(v))
	}

	return buf
}

// binaryVarintMax bounds the bytes of one tag+varint header field: a one-byte
// tag (field numbers < 16) and a varint of at most 10 bytes.
const binaryVarintMax = 1 + 10

// unmarshalEnvelope decodes data into e. Unknown fields are skipped.
func unmarshalEnvelope(data []byte, e *envelope) error {
	*e = envelope{}
	var values []float64
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("envelope tag: %v: %w", protowire.ParseError(n), ErrCodec)
		}
		data = data[n:]

		switch {
		case num == fieldData && typ == protowire.BytesType:
			raw, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return fmt.Errorf("envelope data: %v: %w", protowire.ParseError(m), ErrCodec)
			}
			data = data[m:]
			if len(raw)%8 != 0 {
				return fmt.Errorf("envelope data: %d bytes: %w", len(raw), ErrCodec)
			}
			values = make([]float64, 0, len(raw)/8)
			for len(raw) > 0 {
				bits, k := protowire.ConsumeFixed64(raw)
				if k < 0 {
					return fmt.Errorf("envelope data: %v: %w", protowire.ParseError(k), ErrCodec)
				}
				values = append(values, math.Float64frombits(bits))
				raw = raw[k:]
			}
		case typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(data)
			if m < 0 {
				return fmt.Errorf("envelope field %d: %v: %w", num, protowire.ParseError(m), ErrCodec)
			}
			data = data[m:]
			switch num {
			case fieldFrom:
				e.From = int(v)
			case fieldTo:
				e.To = int(v)
			case fieldTag:
				e.Tag = Tag(v)
			case fieldSeq:
				e.Seq = v
			case fieldSize:
				e.Block.Size = int(v)
			}
		default:
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return fmt.Errorf("envelope field %d: %v: %w", num, protowire.ParseError(m), ErrCodec)
			}
			data = data[m:]
		}
	}

	e.Block.Data = values
	if err := matrix.ValidateBlock(e.Block); err != nil {
		return fmt.Errorf("envelope block: %w", ErrBlockMismatch)
	}

	return nil
}
