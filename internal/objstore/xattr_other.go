// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

//go:build !linux && !darwin

package objstore

import "errors"

var errXattrUnsupported = errors.New("extended attributes are not supported on this platform")

func getXattr(string, string) string {
	return ""
}

func setXattr(string, string, string) error {
	return errXattrUnsupported
}
