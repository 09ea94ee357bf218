// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/placefinder/core"
)

// Element serializers composed from mus-go primitives. Vectors use the raw
// fixed-width float encoding; strings and maps use the ordinary
// length-prefixed encodings.
var (
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS = ord.NewMapSer[string, string](ord.String, ord.String)
)

// IndexEntryMUS serializes core.IndexEntry values for persistence.
// Timestamps are stored as Unix microseconds.
var IndexEntryMUS = indexEntrySer{}

type indexEntrySer struct{}

// Marshal writes the entry into bs and returns the number of bytes written.
// bs must be at least Size(entry) bytes long.
func (indexEntrySer) Marshal(v core.IndexEntry, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Document, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += metadataMUS.Marshal(v.Metadata, bs[n:])
	n += raw.Uint64.Marshal(uint64(v.Hash), bs[n:])
	n += varint.Int64.Marshal(v.InsertedAt.UnixMicro(), bs[n:])
	return n
}

// Unmarshal reads an entry from bs, returning it with the number of bytes
// consumed.
func (indexEntrySer) Unmarshal(bs []byte) (v core.IndexEntry, n int, err error) {
	var n1 int
	if v.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Document, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var hash uint64
	if hash, n1, err = raw.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Hash = core.ContentHash(hash)
	var micros int64
	if micros, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.InsertedAt = time.UnixMicro(micros).UTC()
	return v, n, nil
}

// Size returns the number of bytes Marshal will write for the entry.
func (indexEntrySer) Size(v core.IndexEntry) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.Document)
	size += vectorMUS.Size(v.Vector)
	size += metadataMUS.Size(v.Metadata)
	size += raw.Uint64.Size(uint64(v.Hash))
	size += varint.Int64.Size(v.InsertedAt.UnixMicro())
	return size
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(entry *core.IndexEntry) []byte {
	buf := make([]byte, IndexEntryMUS.Size(*entry))
	IndexEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (*core.IndexEntry, error) {
	entry, _, err := IndexEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return &entry, nil
}
