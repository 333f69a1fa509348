package s3

import (
	"bytes"
	"io"
)

func bytesReader(data []byte) io.ReadSeeker {
	return bytes.NewReader(data)
}

// readAll reads body, preallocating when the size is known.
func readAll(body io.Reader, size int64) ([]byte, error) {
	if size <= 0 {
		return io.ReadAll(body)
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := buf.ReadFrom(body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
