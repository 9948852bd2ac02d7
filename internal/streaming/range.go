package streaming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsatisfiable marks a Range header that cannot be honored against
// the target file. Callers respond with 416 and the file's true size.
var ErrUnsatisfiable = errors.New("range not satisfiable")

// ByteRange is a half-open window into a file, expressed with the
// inclusive bounds the Content-Range header uses.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the header value for a 206 response.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// ParseRange interprets a Range header value against a file of the given
// size. An empty header returns (nil, nil): the caller serves the whole
// file. Multi-range requests and units other than bytes are rejected as
// unsatisfiable rather than silently ignored, so clients get the 416
// plus true-size signal instead of an unexpected full response.
func ParseRange(header string, size int64) (*ByteRange, error) {
	if header == "" {
		return nil, nil
	}

	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return nil, fmt.Errorf("%w: unit in %q", ErrUnsatisfiable, header)
	}
	raw := strings.TrimSpace(header[len(prefix):])

	if strings.Contains(raw, ",") {
		return nil, fmt.Errorf("%w: multiple ranges in %q", ErrUnsatisfiable, header)
	}

	dash := strings.Index(raw, "-")
	if dash < 0 {
		return nil, fmt.Errorf("%w: malformed %q", ErrUnsatisfiable, header)
	}
	startStr := strings.TrimSpace(raw[:dash])
	endStr := strings.TrimSpace(raw[dash+1:])

	if startStr == "" {
		// Suffix form: the final N bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: suffix in %q", ErrUnsatisfiable, header)
		}
		if size == 0 {
			return nil, fmt.Errorf("%w: empty file", ErrUnsatisfiable)
		}
		if n > size {
			n = size
		}
		return &ByteRange{Start: size - n, End: size - 1}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return nil, fmt.Errorf("%w: start in %q", ErrUnsatisfiable, header)
	}
	if start >= size {
		return nil, fmt.Errorf("%w: start %d beyond size %d", ErrUnsatisfiable, start, size)
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil || end < start {
			return nil, fmt.Errorf("%w: end in %q", ErrUnsatisfiable, header)
		}
		if end > size-1 {
			end = size - 1
		}
	}

	return &ByteRange{Start: start, End: end}, nil
}
