// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package encoding

import (
	"encoding/binary"
	"io"
	"math"
	"math/bits"
)

// Encoding functions append bytes to the provided *[]byte, allowing avoiding
// unnecessary allocations if the slice has enough capacity. Decoding functions
// consume the bytes they read from the provided *[]byte and return io.EOF when
// the input ends in the middle of a value.

const maxVarLen64 = 9

// EncodeUvarint64 serializes 64-bit unsigned integers 7 bits at a time,
// starting with the least significant bits. The most significant bit in each
// output byte is the continuation bit and indicates whether there are
// additional non-zero bits encoded in following bytes. There are at most 9
// output bytes and the last one does not have a continuation bit, allowing for
// it to encode 8 bits (8*7+8 = 64).
func EncodeUvarint64(b *[]byte, v uint64) {
	for i := 0; i < maxVarLen64-1; i++ {
		if v < 0x80 {
			*b = append(*b, byte(v))
			return
		}
		*b = append(*b, byte(v)|0x80)
		v >>= 7
	}
	*b = append(*b, byte(v))
}

// DecodeUvarint64 deserializes 64-bit unsigned integers that have been encoded
// using EncodeUvarint64.
func DecodeUvarint64(b *[]byte) (uint64, error) {
	x := uint64(0)
	s := uint(0)
	for i := 0; ; i++ {
		if len(*b) <= i {
			return 0, io.EOF
		}
		n := (*b)[i]
		if n < 0x80 || i == maxVarLen64-1 {
			*b = (*b)[i+1:]
			return x | uint64(n)<<s, nil
		}
		x |= uint64(n&0x7F) << s
		s += 7
	}
}

// Uvarint64Size returns the number of bytes that EncodeUvarint64 encodes a
// 64-bit unsigned integer into.
func Uvarint64Size(v uint64) int {
	for i := 1; i < maxVarLen64; i++ {
		if v < 0x80 {
			return i
		}
		v >>= 7
	}
	return maxVarLen64
}

// varfloat64Rotate is chosen so that the exponent and the leading mantissa
// bits of small integers end up in the first encoded byte.
const varfloat64Rotate = 6

// EncodeVarfloat64 serializes 64-bit floating-point values using a method that
// is similar to the varuint encoding and that is space-efficient for
// non-negative integer values. The output takes at most 9 bytes.
// Input values are first shifted by adding 1, so that 0 has a compact
// representation. Then the bits of the float64 are rotated so that the
// exponent and the most significant mantissa bits come first, and are finally
// encoded 7 bits at a time, starting with the most significant ones, the last
// byte carrying 8 bits.
// Centroid weights are usually small integers, hence the use of this encoding.
func EncodeVarfloat64(b *[]byte, v float64) {
	x := bits.RotateLeft64(math.Float64bits(v+1)-math.Float64bits(1), varfloat64Rotate)
	for i := 0; i < maxVarLen64-1; i++ {
		n := byte(x >> (8*8 - 7))
		x <<= 7
		if x == 0 {
			*b = append(*b, n)
			return
		}
		*b = append(*b, n|0x80)
	}
	*b = append(*b, byte(x>>(8*7)))
}

// DecodeVarfloat64 deserializes 64-bit floating-point values that have been
// encoded with EncodeVarfloat64.
func DecodeVarfloat64(b *[]byte) (float64, error) {
	x := uint64(0)
	i := 0
	for {
		if len(*b) <= i {
			return 0, io.EOF
		}
		n := (*b)[i]
		if i == maxVarLen64-1 {
			x |= uint64(n)
			break
		}
		x |= uint64(n&0x7F) << (8*8 - 7*(i+1))
		if n < 0x80 {
			break
		}
		i++
	}
	*b = (*b)[i+1:]
	return math.Float64frombits(bits.RotateLeft64(x, -varfloat64Rotate)+math.Float64bits(1)) - 1, nil
}

// Varfloat64Size returns the number of bytes that EncodeVarfloat64 encodes a
// 64-bit floating-point value into.
func Varfloat64Size(v float64) int {
	x := bits.RotateLeft64(math.Float64bits(v+1)-math.Float64bits(1), varfloat64Rotate)
	for i := 1; i < maxVarLen64; i++ {
		x <<= 7
		if x == 0 {
			return i
		}
	}
	return maxVarLen64
}

// EncodeFloat64LE serializes 64-bit floating-point values, using 8 bytes in
// little-endian order.
func EncodeFloat64LE(b *[]byte, v float64) {
	*b = binary.LittleEndian.AppendUint64(*b, math.Float64bits(v))
}

// DecodeFloat64LE deserializes 64-bit floating-point values that have been
// encoded with EncodeFloat64LE.
func DecodeFloat64LE(b *[]byte) (float64, error) {
	if len(*b) < 8 {
		return 0, io.EOF
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(*b))
	*b = (*b)[8:]
	return v, nil
}
