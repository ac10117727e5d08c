package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arthur-debert/listings/internal/validation"
	"github.com/arthur-debert/listings/types"
)

// Binary snapshot layout. The file starts with a little-endian int32
// record count followed by that many fixed-size records. Each record
// mirrors a naturally aligned C struct: text blocks are NUL-terminated
// and padded with zeros, doubles sit on 8-byte boundaries.
const (
	countSize  = 4
	RecordSize = 208

	offRef        = 0
	offBroker     = offRef + 4
	offType       = offBroker + types.BrokerSize
	offArea       = offType + types.TypeSize
	offExposition = offArea + types.AreaSize
	offPrice      = 176 // 154+20 rounded up to 8
	offTotalArea  = offPrice + 8
	offRooms      = offTotalArea + 8
	offFloor      = offRooms + 4
	offStatus     = offFloor + 4
)

var le = binary.LittleEndian

// EncodeBinary serialises ps as a binary snapshot.
func EncodeBinary(ps []types.Property) ([]byte, error) {
	if len(ps) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d records", types.ErrCapacityExceeded, len(ps))
	}

	buf := make([]byte, countSize+len(ps)*RecordSize)
	le.PutUint32(buf, uint32(int32(len(ps))))

	for i, p := range ps {
		if err := validation.ValidateProperty(p); err != nil {
			return nil, fmt.Errorf("encode record %d (ref %d): %w", i, p.Ref, err)
		}
		putRecord(buf[countSize+i*RecordSize:countSize+(i+1)*RecordSize], p)
	}
	return buf, nil
}

func putRecord(b []byte, p types.Property) {
	le.PutUint32(b[offRef:], uint32(int32(p.Ref)))
	copy(b[offBroker:offBroker+types.BrokerSize-1], p.Broker)
	copy(b[offType:offType+types.TypeSize-1], p.Type)
	copy(b[offArea:offArea+types.AreaSize-1], p.Area)
	copy(b[offExposition:offExposition+types.ExpositionSize-1], p.Exposition)
	le.PutUint64(b[offPrice:], math.Float64bits(p.Price))
	le.PutUint64(b[offTotalArea:], math.Float64bits(p.TotalArea))
	le.PutUint32(b[offRooms:], uint32(int32(p.Rooms)))
	le.PutUint32(b[offFloor:], uint32(int32(p.Floor)))
	le.PutUint32(b[offStatus:], uint32(int32(p.Status)))
}

// DecodeBinary parses a binary snapshot. The whole file is rejected when
// the declared count is negative or above capacity, when the size does
// not match the count, or when any record is invalid.
func DecodeBinary(data []byte, capacity int) ([]types.Property, error) {
	if len(data) < countSize {
		return nil, binaryErrf(0, nil, "file holds %d bytes, too short for a record count", len(data))
	}

	n := int(int32(le.Uint32(data)))
	if n < 0 || n > capacity {
		return nil, binaryErrf(0, types.ErrCapacityExceeded, "declared record count %d outside 0..%d", n, capacity)
	}
	if want := countSize + n*RecordSize; len(data) != want {
		return nil, binaryErrf(0, nil, "declared %d records (%d bytes), file holds %d bytes", n, want, len(data))
	}

	ps := make([]types.Property, 0, n)
	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		off := countSize + i*RecordSize
		p, err := getRecord(data[off : off+RecordSize])
		if err != nil {
			return nil, binaryErrf(off, err, "record %d", i)
		}
		if seen[p.Ref] {
			return nil, binaryErrf(off, types.ErrDuplicateReference, "record %d ref %d", i, p.Ref)
		}
		seen[p.Ref] = true
		ps = append(ps, p)
	}
	return ps, nil
}

func getRecord(b []byte) (types.Property, error) {
	var p types.Property
	var err error

	p.Ref = int(int32(le.Uint32(b[offRef:])))
	if p.Broker, err = getText(b[offBroker:offBroker+types.BrokerSize], types.FieldBroker); err != nil {
		return p, err
	}
	if p.Type, err = getText(b[offType:offType+types.TypeSize], types.FieldType); err != nil {
		return p, err
	}
	if p.Area, err = getText(b[offArea:offArea+types.AreaSize], types.FieldArea); err != nil {
		return p, err
	}
	if p.Exposition, err = getText(b[offExposition:offExposition+types.ExpositionSize], types.FieldExposition); err != nil {
		return p, err
	}
	p.Price = math.Float64frombits(le.Uint64(b[offPrice:]))
	p.TotalArea = math.Float64frombits(le.Uint64(b[offTotalArea:]))
	p.Rooms = int(int32(le.Uint32(b[offRooms:])))
	p.Floor = int(int32(le.Uint32(b[offFloor:])))
	p.Status = types.Status(int32(le.Uint32(b[offStatus:])))

	return p, validation.ValidateProperty(p)
}

// getText reads a NUL-terminated string from a fixed block. Bytes after
// the terminator are ignored.
func getText(block []byte, field types.Field) (string, error) {
	end := bytes.IndexByte(block, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: %s is not NUL-terminated", types.ErrInvalidValue, field)
	}
	s := string(block[:end])
	return s, validation.ValidateText(field, s)
}

// ReadBinaryFile reads and decodes a binary snapshot file.
func ReadBinaryFile(fsys FileSystem, name string, capacity int) ([]types.Property, error) {
	data, err := ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	ps, err := DecodeBinary(data, capacity)
	if err != nil {
		return nil, inFile(err, name)
	}
	return ps, nil
}
