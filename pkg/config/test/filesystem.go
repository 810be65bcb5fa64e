package test

import (
	"io"
	"io/fs"
)

// MockFile is an in-memory fs.File serving fixed content. Tests hand it
// to file-opening seams to stub certificate or configuration files.
type MockFile struct {
	Content []byte
	readPos int
}

func (mf *MockFile) Read(b []byte) (int, error) {
	if mf.readPos >= len(mf.Content) {
		return 0, io.EOF
	}
	n := copy(b, mf.Content[mf.readPos:])
	mf.readPos += n
	return n, nil
}

func (mf *MockFile) Close() error {
	return nil
}

func (mf *MockFile) Stat() (fs.FileInfo, error) {
	return nil, nil
}

var _ fs.File = (*MockFile)(nil)
