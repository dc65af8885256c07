// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

// Package encoding provides the wire formats of digest snapshots and the low
// level variable-length primitives they are built on.
package encoding

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/DataDog/hashmeter/tdigest"
)

// Codec converts snapshots to and from bytes. Unmarshal only checks the shape
// of the input; records are validated by tdigest.Decode.
type Codec interface {
	Marshal(s tdigest.Snapshot) ([]byte, error)
	Unmarshal(data []byte) (tdigest.Snapshot, error)
	String() string
}

var (
	JSON    Codec = jsonCodec{}
	Proto   Codec = protoCodec{}
	Compact Codec = compactCodec{}
)

// ForPath picks a codec from the extension of path: ".pb" for Proto, ".bin"
// for Compact and JSON for anything else.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pb", ".proto":
		return Proto
	case ".bin", ".tdigest":
		return Compact
	default:
		return JSON
	}
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", tdigest.ErrMalformedSnapshot, err)
}

// jsonCodec writes {"centroids":[{"mean":..,"weight":..}]} and also reads the
// legacy {"m":..,"c":..} records.
type jsonCodec struct{}

func (jsonCodec) Marshal(s tdigest.Snapshot) ([]byte, error) {
	if s.Centroids == nil {
		s.Centroids = []tdigest.Centroid{}
	}
	return json.Marshal(s)
}

func (jsonCodec) Unmarshal(data []byte) (tdigest.Snapshot, error) {
	var s tdigest.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return tdigest.Snapshot{}, malformed(err)
	}
	if s.Centroids == nil {
		s.Centroids = []tdigest.Centroid{}
	}
	return s, nil
}

func (jsonCodec) String() string { return "json" }

// protoCodec writes the google.protobuf.Struct form of the snapshot.
type protoCodec struct{}

func (protoCodec) Marshal(s tdigest.Snapshot) ([]byte, error) {
	return proto.Marshal(s.ToProto())
}

func (protoCodec) Unmarshal(data []byte) (tdigest.Snapshot, error) {
	var pb structpb.Struct
	if err := proto.Unmarshal(data, &pb); err != nil {
		return tdigest.Snapshot{}, malformed(err)
	}
	return tdigest.SnapshotFromProto(&pb)
}

func (protoCodec) String() string { return "proto" }

// compactMagic starts every compact snapshot. It is followed by the number of
// records as a uvarint, then each record as a little-endian float64 mean and a
// varfloat64 weight.
const compactMagic byte = 0xD7

// minCompactRecordSize is the size of a record with a one-byte weight.
const minCompactRecordSize = 8 + 1

type compactCodec struct{}

func (compactCodec) Marshal(s tdigest.Snapshot) ([]byte, error) {
	size := 1 + Uvarint64Size(uint64(len(s.Centroids)))
	for _, c := range s.Centroids {
		size += 8 + Varfloat64Size(c.Weight)
	}
	b := make([]byte, 0, size)
	b = append(b, compactMagic)
	EncodeUvarint64(&b, uint64(len(s.Centroids)))
	for _, c := range s.Centroids {
		EncodeFloat64LE(&b, c.Mean)
		EncodeVarfloat64(&b, c.Weight)
	}
	return b, nil
}

func (compactCodec) Unmarshal(data []byte) (tdigest.Snapshot, error) {
	if len(data) == 0 || data[0] != compactMagic {
		return tdigest.Snapshot{}, tdigest.ErrMalformedSnapshot
	}
	b := data[1:]
	n, err := DecodeUvarint64(&b)
	if err != nil {
		return tdigest.Snapshot{}, malformed(err)
	}
	if n > uint64(len(b)/minCompactRecordSize) {
		return tdigest.Snapshot{}, malformed(fmt.Errorf("%d records announced in %d bytes", n, len(b)))
	}
	centroids := make([]tdigest.Centroid, n)
	for i := range centroids {
		if centroids[i].Mean, err = DecodeFloat64LE(&b); err != nil {
			return tdigest.Snapshot{}, malformed(err)
		}
		if centroids[i].Weight, err = DecodeVarfloat64(&b); err != nil {
			return tdigest.Snapshot{}, malformed(err)
		}
	}
	if len(b) > 0 {
		return tdigest.Snapshot{}, malformed(fmt.Errorf("%d trailing bytes", len(b)))
	}
	return tdigest.Snapshot{Centroids: centroids}, nil
}

func (compactCodec) String() string { return "compact" }
