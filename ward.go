package ward

import (
	"errors"
	"fmt"

	"github.com/sealkeep/ward/pkg/crypt"
	"github.com/sealkeep/ward/pkg/session"
	"github.com/sealkeep/ward/pkg/storage"
	"github.com/sealkeep/ward/pkg/vault"
)

// Open unlocks the vault file at path with the master password and
// returns a live session. If no vault exists yet one is created with a
// fresh random salt, unless WithMustExist forbids it. A wrong password
// or a tampered file yields crypt.ErrAuthentication; no partial unlock
// state exists.
func Open(path, masterPassword string, opts ...Option) (*session.Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	store := storage.NewStore(path)

	env, err := store.Load()
	if err != nil {
		if errors.Is(err, storage.ErrNoVault) && !o.mustExist {
			return create(store, masterPassword, o)
		}
		return nil, err
	}

	key := crypt.DeriveKey(masterPassword, env.Salt)
	box, err := crypt.NewBox(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := box.Decrypt(env.Nonce, env.Ciphertext)
	if err != nil {
		return nil, err
	}

	v, err := vault.Unmarshal(plaintext)
	if err != nil {
		return nil, fmt.Errorf("vault decrypted but could not be decoded: %w", err)
	}

	o.logger.Debug("vault unlocked", "path", path, "records", v.Len())
	return session.New(v, box, env.Salt, store, o.logger), nil
}

// create initializes a brand new vault file: random salt, empty vault,
// first envelope written immediately so the salt is durable.
func create(store *storage.Store, masterPassword string, o *options) (*session.Session, error) {
	salt, err := crypt.NewSalt()
	if err != nil {
		return nil, err
	}
	box, err := crypt.NewBox(crypt.DeriveKey(masterPassword, salt))
	if err != nil {
		return nil, err
	}

	sess := session.New(vault.New(), box, salt, store, o.logger)
	if err := sess.Save(); err != nil {
		return nil, fmt.Errorf("failed to create vault: %w", err)
	}

	o.logger.Debug("new vault created", "path", store.Path)
	return sess, nil
}
