// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package wheel

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"hash"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/datawire/dlib/derror"
)

// The RECORD hash algorithm must be sha256 or better; md5 and sha1 are not
// permitted, as signed wheel files rely on the strong hashes in RECORD to
// validate the integrity of the archive.
//
//nolint:gochecknoglobals // Would be 'const'.
var strongHashes = map[string]func() hash.Hash{
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,
}

// VerifyRecord checks the wheel's ".dist-info/RECORD" against the archive:
// every file except RECORD and its signatures must be listed with a correct
// strong hash and size, and every listed file must exist.  All problems are
// collected and returned together.
func (wh *Wheel) VerifyRecord() error {
	distInfoDir, err := wh.DistInfoDir()
	if err != nil {
		return err
	}

	todo := make(map[string]struct{})
	for _, file := range wh.zip.File {
		if file.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(file.Name)
		switch name {
		case path.Join(distInfoDir, "RECORD.jws"):
			// signature files are not mentioned in RECORD
		case path.Join(distInfoDir, "RECORD.p7s"):
			// signature files are not mentioned in RECORD
		default:
			todo[name] = struct{}{}
		}
	}

	recordData, err := func() ([][]string, error) {
		recordName := path.Join(distInfoDir, "RECORD")
		reader, err := wh.OpenFile(recordName)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = reader.Close()
		}()
		data, err := csv.NewReader(reader).ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", recordName, err)
		}
		return data, nil
	}()
	if err != nil {
		return err
	}

	var errs derror.MultiError
	for i, row := range recordData {
		if len(row) != 3 {
			errs = append(errs, fmt.Errorf("RECORD row %d: does not have 3 columns: %q", i, row))
			continue
		}
		name, recHashsum, recSize := path.Clean(row[0]), row[1], row[2]
		delete(todo, name)
		if recHashsum == "" || recSize == "" {
			if name != path.Join(distInfoDir, "RECORD") {
				errs = append(errs, fmt.Errorf("RECORD row %d: missing hash or size: %q", i, row))
			}
			continue
		}

		algo := strings.SplitN(recHashsum, "=", 2)[0]
		actHashsum, actSize, err := wh.hashFile(name, algo)
		if err != nil {
			errs = append(errs, fmt.Errorf("RECORD row %d: file %q: %w", i, name, err))
			continue
		}
		if actHashsum != recHashsum {
			errs = append(errs, fmt.Errorf("RECORD row %d: file %q: checksum mismatch: RECORD=%q actual=%q",
				i, name, recHashsum, actHashsum))
		}
		if strconv.FormatInt(actSize, 10) != recSize {
			errs = append(errs, fmt.Errorf("RECORD row %d: file %q: size mismatch: RECORD=%s actual=%d",
				i, name, recSize, actSize))
		}
	}

	if len(todo) > 0 {
		todoNames := make([]string, 0, len(todo))
		for name := range todo {
			todoNames = append(todoNames, name)
		}
		sort.Strings(todoNames)
		errs = append(errs, fmt.Errorf("files not mentioned in RECORD: %q", todoNames))
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (wh *Wheel) hashFile(filename, algo string) (hashsum string, size int64, err error) {
	newHasher, ok := strongHashes[algo]
	if !ok {
		return "", 0, fmt.Errorf("unsupported hash algorithm: %q", algo)
	}
	hasher := newHasher()

	reader, err := wh.OpenFile(filename)
	if err != nil {
		return "", 0, err
	}
	defer func() {
		_ = reader.Close()
	}()

	size, err = io.Copy(hasher, reader)
	if err != nil {
		return "", 0, err
	}

	hashsum = algo + "=" + base64.RawURLEncoding.EncodeToString(hasher.Sum(nil))
	return hashsum, size, nil
}
