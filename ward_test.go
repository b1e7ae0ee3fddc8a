package ward_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealkeep/ward"
	"github.com/sealkeep/ward/pkg/crypt"
	"github.com/sealkeep/ward/pkg/storage"
)

func TestOpen(t *testing.T) {
	t.Run("Creates Vault On First Run", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vault.ward")

		sess, err := ward.Open(path, "master")
		require.NoError(t, err)
		require.NotNil(t, sess)

		// The salt must be durable immediately, before any command.
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("MustExist Fails Closed On First Run", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vault.ward")

		_, err := ward.Open(path, "master", ward.WithMustExist(true))
		assert.ErrorIs(t, err, storage.ErrNoVault)
	})

	t.Run("Reopen Restores State", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vault.ward")

		sess, err := ward.Open(path, "master")
		require.NoError(t, err)
		_, err = sess.Exec("set gmail user = zahash sensitive pass = amogus")
		require.NoError(t, err)

		reopened, err := ward.Open(path, "master", ward.WithMustExist(true))
		require.NoError(t, err)

		result, err := reopened.Exec("reveal gmail")
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, "'gmail' pass='amogus' user='zahash'", result.Lines[0])
	})

	t.Run("Wrong Password Is AuthenticationError", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vault.ward")

		_, err := ward.Open(path, "master")
		require.NoError(t, err)

		_, err = ward.Open(path, "not the master")
		assert.ErrorIs(t, err, crypt.ErrAuthentication)
	})

	t.Run("Tampered File Is AuthenticationError", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vault.ward")

		sess, err := ward.Open(path, "master")
		require.NoError(t, err)
		_, err = sess.Exec("set gmail sensitive pass = amogus")
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		data[len(data)-1] ^= 0x01
		require.NoError(t, os.WriteFile(path, data, 0600))

		_, err = ward.Open(path, "master")
		assert.ErrorIs(t, err, crypt.ErrAuthentication)
	})

	t.Run("Fresh Salt Per Vault", func(t *testing.T) {
		dir := t.TempDir()
		a := filepath.Join(dir, "a.ward")
		b := filepath.Join(dir, "b.ward")

		_, err := ward.Open(a, "master")
		require.NoError(t, err)
		_, err = ward.Open(b, "master")
		require.NoError(t, err)

		envA, err := storage.NewStore(a).Load()
		require.NoError(t, err)
		envB, err := storage.NewStore(b).Load()
		require.NoError(t, err)
		assert.NotEqual(t, envA.Salt, envB.Salt)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("Missing File Yields Defaults", func(t *testing.T) {
		cfg, err := ward.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Empty(t, cfg.Vault)
		assert.False(t, cfg.Watch)
	})

	t.Run("Reads Yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ward.yaml")
		require.NoError(t, os.WriteFile(path, []byte("vault: /tmp/custom.ward\nwatch: true\n"), 0600))

		cfg, err := ward.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/custom.ward", cfg.Vault)
		assert.True(t, cfg.Watch)
	})

	t.Run("Rejects Malformed Yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ward.yaml")
		require.NoError(t, os.WriteFile(path, []byte(":\n\t- not yaml"), 0600))

		_, err := ward.LoadConfig(path)
		assert.Error(t, err)
	})
}
