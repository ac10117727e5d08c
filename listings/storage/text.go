package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arthur-debert/listings/internal/validation"
	"github.com/arthur-debert/listings/types"
)

const textFields = 10

// EncodeText renders ps in the delimited recovery format, one record per
// line: ref|broker|type|area|exposition|price|total_area|rooms|floor|status.
// Amounts carry two decimals; status is its ordinal.
func EncodeText(ps []types.Property) ([]byte, error) {
	var b bytes.Buffer
	for i, p := range ps {
		if err := validation.ValidateProperty(p); err != nil {
			return nil, fmt.Errorf("encode record %d (ref %d): %w", i, p.Ref, err)
		}
		fmt.Fprintf(&b, "%d|%s|%s|%s|%s|%.2f|%.2f|%d|%d|%d\n",
			p.Ref, p.Broker, p.Type, p.Area, p.Exposition,
			p.Price, p.TotalArea, p.Rooms, p.Floor, int32(p.Status))
	}
	return b.Bytes(), nil
}

// TextResult is the outcome of DecodeText.
type TextResult struct {
	Properties []types.Property
	// Skipped lists the lines dropped under MalformedSkip.
	Skipped []*DataError
}

// DecodeText parses the delimited format. Blank lines are ignored. A
// malformed line, including one repeating an earlier ref, is skipped
// and reported under MalformedSkip and fails the whole read under
// MalformedAbort. Holding more valid records than capacity always fails.
func DecodeText(r io.Reader, capacity int, policy types.MalformedPolicy) (TextResult, error) {
	var res TextResult
	seen := make(map[int]bool)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		p, err := parseLine(raw)
		if err == nil && seen[p.Ref] {
			err = fmt.Errorf("%w: ref %d", types.ErrDuplicateReference, p.Ref)
		}
		if err != nil {
			de := textErrf(line, err, "malformed record")
			if policy == types.MalformedAbort {
				return TextResult{}, de
			}
			res.Skipped = append(res.Skipped, de)
			continue
		}

		if len(res.Properties) >= capacity {
			return TextResult{}, textErrf(line, types.ErrCapacityExceeded, "more than %d records", capacity)
		}
		seen[p.Ref] = true
		res.Properties = append(res.Properties, p)
	}
	if err := sc.Err(); err != nil {
		return TextResult{}, textErrf(line+1, err, "read failed")
	}
	return res, nil
}

func parseLine(s string) (types.Property, error) {
	var p types.Property

	f := strings.Split(s, types.Delimiter)
	if len(f) != textFields {
		return p, fmt.Errorf("%w: %d fields, want %d", types.ErrInvalidValue, len(f), textFields)
	}

	var err error
	if p.Ref, err = parseInt(types.FieldRef, f[0]); err != nil {
		return p, err
	}
	p.Broker, p.Type, p.Area, p.Exposition = f[1], f[2], f[3], f[4]
	if p.Price, err = parseFloat(types.FieldPrice, f[5]); err != nil {
		return p, err
	}
	if p.TotalArea, err = parseFloat(types.FieldTotalArea, f[6]); err != nil {
		return p, err
	}
	if p.Rooms, err = parseInt(types.FieldRooms, f[7]); err != nil {
		return p, err
	}
	if p.Floor, err = parseInt(types.FieldFloor, f[8]); err != nil {
		return p, err
	}
	status, err := parseInt(types.FieldStatus, f[9])
	if err != nil {
		return p, err
	}
	p.Status = types.Status(status)

	return p, validation.ValidateProperty(p)
}

func parseInt(field types.Field, s string) (int, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", types.ErrInvalidValue, field, s)
	}
	return int(v), nil
}

func parseFloat(field types.Field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", types.ErrInvalidValue, field, s)
	}
	return v, nil
}
