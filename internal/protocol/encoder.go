package protocol

import (
	"strconv"
)

// Encode appends the wire representation of v to dst and returns the
// extended slice, symmetric with TryDecode for every record kind.
func Encode(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindSimpleString:
		dst = append(dst, '+')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case KindError:
		dst = append(dst, '-')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, '\r', '\n')
	case KindBulkString:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Str)), 10)
		dst = append(dst, '\r', '\n')
		dst = append(dst, v.Str...)
		return append(dst, '\r', '\n')
	case KindNullBulk:
		return append(dst, '$', '-', '1', '\r', '\n')
	case KindNullArray:
		return append(dst, '*', '-', '1', '\r', '\n')
	case KindArray:
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Array)), 10)
		dst = append(dst, '\r', '\n')
		for _, item := range v.Array {
			dst = Encode(dst, item)
		}
		return dst
	default:
		return dst
	}
}

// EncodeBytes is a convenience wrapper around Encode for callers that do
// not already hold a reusable buffer.
func EncodeBytes(v Value) []byte {
	return Encode(nil, v)
}
