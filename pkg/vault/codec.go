package vault

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotVersion identifies the serialized vault layout. Bump it for
// any change that breaks decoding of existing vaults.
const SnapshotVersion = 1

// snapshot is the serialized form of a vault: the plaintext that gets
// encrypted into the on-disk envelope.
type snapshot struct {
	Version    int       `msgpack:"version"`
	Records    []*Record `msgpack:"records"`
	Tombstones []*Record `msgpack:"tombstones,omitempty"`
}

// MarshalBinary serializes the vault with msgpack.
func (v *Vault) MarshalBinary() ([]byte, error) {
	snap := snapshot{
		Version:    SnapshotVersion,
		Records:    v.records,
		Tombstones: v.tombstones,
	}
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vault: %w", err)
	}
	return data, nil
}

// Unmarshal reconstructs a vault from its serialized form.
func Unmarshal(data []byte) (*Vault, error) {
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to deserialize vault: %w", err)
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("vault snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}
	return &Vault{
		records:    snap.Records,
		tombstones: snap.Tombstones,
		now:        time.Now,
	}, nil
}
