// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package images stores petition and profile images on the local filesystem.

	ext, err := images.Check(body, r.Header.Get("Content-Type"))
	name, err := store.Save(body, ext)
	data, mime, err := store.Read(name)
	err = store.Remove(name)

Only image/jpeg, image/png and image/gif are accepted, and the declared type
must agree with the sniffed content. Filenames are random hex IDs plus the
extension; only the filename is kept on the petition or user row.
*/
package images
