// Package checksum stamps extracted files with MD5 digests and writes a
// manifest that can be signed.
package checksum

import (
	"crypto/ed25519"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File names and extensions written next to the artifacts.
const (
	Extension     = ".md5"
	ManifestFile  = "checksums.txt"
	SignatureFile = ManifestFile + ".sig"
	PublicKeyFile = ManifestFile + ".pub"
)

// Signer signs manifests. *keystore.Signer satisfies it.
type Signer interface {
	Sign(msg []byte) ([]byte, error)
	PublicKey() ed25519.PublicKey
}

// Sum returns the lowercase hex MD5 digest of the file at path.
func Sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Stamp writes the digest of path to path+".md5" and returns the stamp's
// path and the digest.
func Stamp(path string) (string, string, error) {
	sum, err := Sum(path)
	if err != nil {
		return "", "", err
	}
	stamp := path + Extension
	if err := os.WriteFile(stamp, []byte(sum), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", stamp, err)
	}
	return stamp, sum, nil
}

// Manifest is the content of a checksums.txt file.
type Manifest struct {
	entries map[string]string
}

// NewManifest digests every file in paths, naming each relative to dir.
func NewManifest(dir string, paths []string) (*Manifest, error) {
	m := &Manifest{entries: make(map[string]string, len(paths))}
	for _, path := range paths {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil, fmt.Errorf("%s is outside %s: %w", path, dir, err)
		}
		sum, err := Sum(path)
		if err != nil {
			return nil, err
		}
		m.entries[filepath.ToSlash(rel)] = sum
	}
	return m, nil
}

// Bytes renders one "<md5>  <path>" line per file, sorted by path.
func (m *Manifest) Bytes() []byte {
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s  %s\n", m.entries[name], name)
	}
	return []byte(b.String())
}

// WriteManifest writes dir/checksums.txt for paths. With a signer it also
// writes the base64 signature and public key next to it. It returns every
// file it wrote.
func WriteManifest(dir string, paths []string, signer Signer) ([]string, error) {
	m, err := NewManifest(dir, paths)
	if err != nil {
		return nil, err
	}
	content := m.Bytes()

	manifestPath := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(manifestPath, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}
	written := []string{manifestPath}

	if signer == nil {
		return written, nil
	}

	sig, err := signer.Sign(content)
	if err != nil {
		return written, fmt.Errorf("failed to sign manifest: %w", err)
	}

	sigPath := filepath.Join(dir, SignatureFile)
	if err := os.WriteFile(sigPath, []byte(base64.StdEncoding.EncodeToString(sig)+"\n"), 0o644); err != nil {
		return written, fmt.Errorf("failed to write %s: %w", sigPath, err)
	}
	written = append(written, sigPath)

	pubPath := filepath.Join(dir, PublicKeyFile)
	if err := os.WriteFile(pubPath, []byte(base64.StdEncoding.EncodeToString(signer.PublicKey())+"\n"), 0o644); err != nil {
		return written, fmt.Errorf("failed to write %s: %w", pubPath, err)
	}
	return append(written, pubPath), nil
}

// Verify checks dir/checksums.txt against its signature using the
// base64-encoded signature file.
func Verify(dir string, publicKey ed25519.PublicKey) error {
	content, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	encoded, err := os.ReadFile(filepath.Join(dir, SignatureFile))
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", err)
	}
	if !ed25519.Verify(publicKey, content, sig) {
		return fmt.Errorf("manifest signature verification failed")
	}
	return nil
}
