package cliutil

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"

	semver "github.com/Masterminds/semver/v3"
)

// SupportedBundleFormat is the semver range of bundle manifest
// `format-version` values this build of the evaluator core can consume
// (SPEC_FULL.md §6): a concrete, narrow use of semver to gate a manifest
// field, not a reimplementation of module resolution.
const SupportedBundleFormat = ">=1.0.0, <2.0.0"

// BundleManifest is the small header a `--bundle` artifact carries ahead of
// its concatenated source payload. The module resolver/bundler that
// produces this artifact is an out-of-scope collaborator (spec.md §1); this
// type only describes the header WriteBundle emits and ReadBundle checks.
// cmd/hemlock writes bundles but does not read them back.
type BundleManifest struct {
	FormatVersion string `json:"format-version"`
	Entry         string `json:"entry"`
	Compressed    bool   `json:"compressed"`
}

// CheckBundleFormat reports an error if mf's format-version falls outside
// SupportedBundleFormat, grounded on the teacher's outdated-dependency
// semver.Constraint check (cmd/orizon/pkg/commands/outdated.go) and its
// resolver's NewConstraint/Check usage (internal/packagemanager/resolver.go).
func CheckBundleFormat(mf *BundleManifest) error {
	v, err := semver.NewVersion(mf.FormatVersion)
	if err != nil {
		return fmt.Errorf("bundle: invalid format-version %q: %w", mf.FormatVersion, err)
	}
	c, err := semver.NewConstraint(SupportedBundleFormat)
	if err != nil {
		return fmt.Errorf("bundle: internal constraint error: %w", err)
	}
	if !c.Check(v) {
		return fmt.Errorf("bundle: format-version %s is not supported by this build (requires %s)", mf.FormatVersion, SupportedBundleFormat)
	}
	return nil
}

// WriteBundle serializes src (the already-resolved/concatenated program
// text an out-of-scope bundler produced) behind a manifest header, gzip
// compressing the payload when compress is set (`--compress`).
func WriteBundle(outPath, entry string, src []byte, compress bool) error {
	mf := BundleManifest{FormatVersion: "1.0.0", Entry: entry, Compressed: compress}
	header, err := json.Marshal(mf)
	if err != nil {
		return fmt.Errorf("bundle: failed to marshal manifest: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("bundle: failed to create %q: %w", outPath, err)
	}
	defer f.Close()

	if _, err := f.Write(append(header, '\n')); err != nil {
		return fmt.Errorf("bundle: failed to write manifest: %w", err)
	}

	if !compress {
		_, err = f.Write(src)
		return err
	}

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(src); err != nil {
		gz.Close()
		return fmt.Errorf("bundle: failed to compress payload: %w", err)
	}
	return gz.Close()
}

// ReadBundle parses path's manifest header and returns the decoded
// source payload, validating the format-version first.
func ReadBundle(path string) (*BundleManifest, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: failed to open %q: %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	var mf BundleManifest
	if err := dec.Decode(&mf); err != nil {
		return nil, nil, fmt.Errorf("bundle: failed to parse manifest: %w", err)
	}
	if err := CheckBundleFormat(&mf); err != nil {
		return nil, nil, err
	}

	rest, err := io.ReadAll(dec.Buffered())
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: failed to read payload: %w", err)
	}
	tail, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: failed to read payload: %w", err)
	}
	payload := append(rest, tail...)

	if !mf.Compressed {
		return &mf, payload, nil
	}
	gz, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: failed to decompress payload: %w", err)
	}
	defer gz.Close()
	out, err := io.ReadAll(gz)
	if err != nil {
		return nil, nil, fmt.Errorf("bundle: failed to decompress payload: %w", err)
	}
	return &mf, out, nil
}
