package hosts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var translateHosts = []string{"translate.googleapis.com", "translate.google.com"}

func writeHosts(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

func readHosts(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestBindAppendsMissing(t *testing.T) {
	path := writeHosts(t, "127.0.0.1 localhost\n", 0o644)

	require.NoError(t, (&Binder{Path: path}).Bind("142.250.1.1", translateHosts))
	assert.Equal(t, "127.0.0.1 localhost\n142.250.1.1 translate.googleapis.com\n142.250.1.1 translate.google.com\n", readHosts(t, path))
}

func TestBindReplacesExisting(t *testing.T) {
	path := writeHosts(t, "127.0.0.1 localhost\n"+
		"1.1.1.1 translate.googleapis.com\n"+
		"# 2.2.2.2 translate.google.com\n"+
		"2.2.2.2 translate.google.com.hk\n"+
		"3.3.3.3 translate.google.com other.example # pinned\n", 0o644)

	require.NoError(t, (&Binder{Path: path}).Bind("142.250.1.1", translateHosts))
	assert.Equal(t, "127.0.0.1 localhost\n"+
		"142.250.1.1 translate.googleapis.com\n"+
		"# 2.2.2.2 translate.google.com\n"+
		"2.2.2.2 translate.google.com.hk\n"+
		"142.250.1.1 translate.google.com\n"+
		"3.3.3.3 other.example # pinned\n", readHosts(t, path))
}

func TestBindKeepsCommentOfFullyReboundLine(t *testing.T) {
	path := writeHosts(t, "1.1.1.1 translate.googleapis.com translate.google.com # gtranslate\n", 0o644)
	b := &Binder{Path: path}

	require.NoError(t, b.Bind("142.250.1.1", translateHosts))
	want := "142.250.1.1 translate.googleapis.com # gtranslate\n142.250.1.1 translate.google.com\n"
	assert.Equal(t, want, readHosts(t, path))

	require.NoError(t, b.Bind("142.250.1.1", translateHosts))
	assert.Equal(t, want, readHosts(t, path))
}

func TestBindIsIdempotent(t *testing.T) {
	path := writeHosts(t, "127.0.0.1 localhost\n", 0o644)
	b := &Binder{Path: path}
	require.NoError(t, b.Bind("142.250.1.1", translateHosts))
	require.NoError(t, b.Bind("142.250.1.2", translateHosts))
	assert.Equal(t, "127.0.0.1 localhost\n142.250.1.2 translate.googleapis.com\n142.250.1.2 translate.google.com\n", readHosts(t, path))
}

func TestBindDropsDuplicateMappings(t *testing.T) {
	path := writeHosts(t, "1.1.1.1 translate.google.com\r\n2.2.2.2 TRANSLATE.GOOGLE.COM\r\n", 0o644)
	require.NoError(t, (&Binder{Path: path}).Bind("2a00:1450:4001:802::200a", []string{"translate.google.com"}))
	assert.Equal(t, "2a00:1450:4001:802::200a translate.google.com\r\n", readHosts(t, path))
}

func TestBindReadOnlyFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}
	path := writeHosts(t, "127.0.0.1 localhost\n", 0o444)
	require.NoError(t, (&Binder{Path: path}).Bind("142.250.1.1", translateHosts[:1]))
	assert.Contains(t, readHosts(t, path), "142.250.1.1 translate.googleapis.com")
}

func TestBindErrors(t *testing.T) {
	b := &Binder{Path: filepath.Join(t.TempDir(), "missing")}
	assert.Error(t, b.Bind("142.250.1.1", translateHosts))
	assert.Error(t, b.Bind("not-an-ip", translateHosts))
	assert.Error(t, (&Binder{Path: writeHosts(t, "", 0o644)}).Bind("142.250.1.1", nil))
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"142.250.1.1 translate.googleapis.com", "142.250.1.1 translate.google.com"}, Lines("142.250.1.1", translateHosts))
}

func TestPlatformTables(t *testing.T) {
	p, err := pathFor("linux")
	require.NoError(t, err)
	assert.Equal(t, "/etc/hosts", p)
	_, err = pathFor("plan9")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)

	name, args, ok := flushCommand("darwin")
	assert.True(t, ok)
	assert.Equal(t, "killall", name)
	assert.Equal(t, []string{"-HUP", "mDNSResponder"}, args)
	_, _, ok = flushCommand("plan9")
	assert.False(t, ok)
}
