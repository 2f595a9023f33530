// Copyright (C) ConfigHub, Inc.
// SPDX-License-Identifier: MIT

package handler

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/monadic/stepwise/internal/clierr"
)

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// AppendText appends text to the file at path, creating it if needed. A
// newline separator is written first when the file is non-empty and does
// not already end in one. Repeated calls append again.
func AppendText(path, text string) (int, error) {
	path = ExpandHome(path)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return 0, &clierr.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	sep, err := needsSeparator(f)
	if err != nil {
		return 0, &clierr.IOError{Op: "read", Path: path, Err: err}
	}

	payload := text
	if sep {
		payload = "\n" + text
	}
	n, err := f.WriteString(payload)
	if err != nil {
		return n, &clierr.IOError{Op: "append", Path: path, Err: err}
	}
	return n, nil
}

func needsSeparator(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false, err
	}
	return last[0] != '\n', nil
}
