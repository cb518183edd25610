// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

//go:build linux || darwin

package objstore

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// getXattr returns the attribute value or "" when it is missing or unreadable.
func getXattr(path, name string) string {
	size, err := unix.Getxattr(path, name, nil)
	if err != nil || size <= 0 {
		return ""
	}
	buf := make([]byte, size)
	for {
		n, err := unix.Getxattr(path, name, buf)
		if errors.Is(err, unix.ERANGE) {
			// the attribute grew between the two calls
			buf = make([]byte, len(buf)*2)
			continue
		}
		if err != nil || !utf8.Valid(buf[:n]) {
			return ""
		}
		return string(buf[:n])
	}
}

func setXattr(path, name, value string) error {
	return unix.Setxattr(path, name, []byte(value), 0)
}
