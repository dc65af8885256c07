// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2026 Datadog, Inc.

package tdigest

import (
	"math"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"
)

// Snapshot is the serializable form of a digest: its centroids in ascending mean
// order. The compression and scale function are configuration and are not part
// of it.
type Snapshot struct {
	Centroids []Centroid `json:"centroids" yaml:"centroids"`
}

// Encode returns a snapshot of the current centroids. It does not compress the
// digest first.
func (d *TDigest) Encode() Snapshot {
	return Snapshot{Centroids: d.Centroids()}
}

// Decode rebuilds a digest from a snapshot. Every record must have a finite
// mean and a positive finite weight, otherwise a *MalformedCentroidError is
// returned and no digest is built. Records are sorted by mean but not
// compressed.
func Decode(s Snapshot, opts ...Option) (*TDigest, error) {
	for i, c := range s.Centroids {
		if !validCentroid(c) {
			return nil, &MalformedCentroidError{Index: i, Centroid: c}
		}
	}
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	d.centroids = make(Centroids, len(s.Centroids))
	copy(d.centroids, s.Centroids)
	sort.Stable(d.centroids)
	for _, c := range d.centroids {
		d.count += c.Weight
	}
	d.weights.rebuild(d.centroids)
	return d, nil
}

func validCentroid(c Centroid) bool {
	return !math.IsNaN(c.Mean) && !math.IsInf(c.Mean, 0) &&
		c.Weight > 0 && !math.IsInf(c.Weight, 1)
}

// ToProto returns the snapshot as a protobuf Struct with the same shape as its
// JSON form.
func (s Snapshot) ToProto() *structpb.Struct {
	records := make([]*structpb.Value, len(s.Centroids))
	for i, c := range s.Centroids {
		records[i] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"mean":   structpb.NewNumberValue(c.Mean),
				"weight": structpb.NewNumberValue(c.Weight),
			},
		})
	}
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"centroids": structpb.NewListValue(&structpb.ListValue{Values: records}),
		},
	}
}

// SnapshotFromProto reads a snapshot from its protobuf Struct form. A missing
// centroids field is an empty snapshot. Records are not validated here.
func SnapshotFromProto(pb *structpb.Struct) (Snapshot, error) {
	field, ok := pb.GetFields()["centroids"]
	if !ok {
		return Snapshot{Centroids: []Centroid{}}, nil
	}
	list, ok := field.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return Snapshot{}, ErrMalformedSnapshot
	}
	values := list.ListValue.GetValues()
	centroids := make([]Centroid, len(values))
	for i, v := range values {
		record := v.GetStructValue()
		if record == nil {
			return Snapshot{}, ErrMalformedSnapshot
		}
		centroids[i] = Centroid{
			Mean:   numberField(record, math.NaN(), "mean", "m"),
			Weight: numberField(record, 0, "weight", "c"),
		}
	}
	return Snapshot{Centroids: centroids}, nil
}

func numberField(record *structpb.Struct, fallback float64, names ...string) float64 {
	for _, name := range names {
		if v, ok := record.GetFields()[name]; ok {
			if n, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
				return n.NumberValue
			}
			return fallback
		}
	}
	return fallback
}

// ToProto returns the protobuf form of the digest snapshot.
func (d *TDigest) ToProto() *structpb.Struct {
	return d.Encode().ToProto()
}

// FromProto builds a digest from its protobuf form.
func FromProto(pb *structpb.Struct, opts ...Option) (*TDigest, error) {
	s, err := SnapshotFromProto(pb)
	if err != nil {
		return nil, err
	}
	return Decode(s, opts...)
}
