package storage

import (
	"errors"
	"fmt"

	"github.com/arthur-debert/listings/types"
)

// DataError describes a rejected piece of a persisted file. It always
// matches types.ErrCorruptData with errors.Is, as well as the underlying
// cause when there is one.
type DataError struct {
	File string // empty when decoding from memory
	Line int    // 1-based line of a text file, 0 for binary data
	Off  int    // byte offset of a binary record, -1 for text data
	Err  error
	Msg  string
}

func textErrf(line int, err error, format string, args ...any) *DataError {
	return &DataError{Line: line, Off: -1, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func binaryErrf(off int, err error, format string, args ...any) *DataError {
	return &DataError{Off: off, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() []error {
	if e.Err == nil {
		return []error{types.ErrCorruptData}
	}
	return []error{types.ErrCorruptData, e.Err}
}

func (e *DataError) Error() string {
	var where string
	switch {
	case e.Line > 0:
		where = fmt.Sprintf("line %d", e.Line)
	case e.Off >= 0:
		where = fmt.Sprintf("offset %d", e.Off)
	}
	if e.File != "" {
		if where == "" {
			where = e.File
		} else {
			where = e.File + ":" + where
		}
	}

	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if where == "" {
		return fmt.Sprintf("corrupt data: %s", msg)
	}
	return fmt.Sprintf("corrupt data at %s: %s", where, msg)
}

// inFile stamps the file name on every DataError in err.
func inFile(err error, name string) error {
	var de *DataError
	if errors.As(err, &de) && de.File == "" {
		de.File = name
	}
	return err
}
