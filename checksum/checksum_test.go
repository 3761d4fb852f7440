package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joncooperworks/coreextract/keystore"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStamp(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "settings.xml"), "")

	stamp, sum, err := Stamp(path)
	require.NoError(t, err)
	assert.Equal(t, path+".md5", stamp)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", sum)

	data, err := os.ReadFile(stamp)
	require.NoError(t, err)
	assert.Equal(t, sum, string(data))
}

func TestStamp_MissingFile(t *testing.T) {
	_, _, err := Stamp(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWriteManifest_Unsigned(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, filepath.Join(dir, "settings.xml"), "abc")
	a := writeFile(t, filepath.Join(dir, "resources", "strings.po"), "")

	written, err := WriteManifest(dir, []string{b, a}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, ManifestFile)}, written)

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	want := "d41d8cd98f00b204e9800998ecf8427e  resources/strings.po\n" +
		"900150983cd24fb0d6963f7d28e17f72  settings.xml\n"
	assert.Equal(t, want, string(data))
}

func TestWriteManifest_Signed(t *testing.T) {
	ks := keystore.NewMemoryKeystore()
	_, err := keystore.Generate(ks, "release")
	require.NoError(t, err)
	signer, err := keystore.NewSigner(ks, "release")
	require.NoError(t, err)
	defer signer.Close()

	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "addon.xml"), "<addon/>")

	written, err := WriteManifest(dir, []string{path}, signer)
	require.NoError(t, err)
	assert.Len(t, written, 3)
	assert.FileExists(t, filepath.Join(dir, SignatureFile))
	assert.FileExists(t, filepath.Join(dir, PublicKeyFile))

	require.NoError(t, Verify(dir, signer.PublicKey()))

	writeFile(t, filepath.Join(dir, ManifestFile), "tampered\n")
	assert.Error(t, Verify(dir, signer.PublicKey()))
}
