package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrTruncated      = errors.New("protocol: truncated message")
	ErrUnknownType    = errors.New("protocol: unknown message type")
	ErrTypeMismatch   = errors.New("protocol: unexpected message type")
	ErrPacketTooLarge = errors.New("protocol: packet too large")
)

// message 可以按 protobuf 线格式编码的消息
type message interface {
	appendTo(b []byte) []byte
}

// 字段为零值时不写出，与 proto3 的默认行为一致

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	return appendVarint(b, num, uint64(int64(v)))
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessage 嵌套消息总是写出（即使为空），保证 repeated 字段的元素个数
func appendMessage(b []byte, num protowire.Number, m message) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendTo(nil))
}

// field 解码出的单个字段
type field struct {
	num   protowire.Number
	typ   protowire.Type
	value uint64
	bytes []byte
}

func (f field) int32() int32 {
	return int32(f.value)
}

func (f field) int64() int64 {
	return int64(f.value)
}

func (f field) bool() bool {
	return protowire.DecodeBool(f.value)
}

func (f field) string() string {
	return string(f.bytes)
}

// isVarint 与 isBytes 用于忽略类型不符的字段
func (f field) isVarint() bool {
	return f.typ == protowire.VarintType
}

func (f field) isBytes() bool {
	return f.typ == protowire.BytesType
}

// consumeFields 逐个解析字段并交给 fn，未知字段由 fn 忽略
func consumeFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return wireError(n)
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.value, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return wireError(n)
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func wireError(n int) error {
	return fmt.Errorf("%w: %v", ErrTruncated, protowire.ParseError(n))
}
