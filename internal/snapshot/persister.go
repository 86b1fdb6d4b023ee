package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"ffg-go/internal/ffg"
)

// VaultPersister saves the tree as one blob in a vault slot.
//
// Save runs the pipeline JSON, then zstd when compression is on, then the
// encryptor when one is set. Load reverses it and detects compression on its
// own, so toggling compression never strands an old snapshot.
type VaultPersister struct {
	vault     Vault
	slot      string
	compress  bool
	encryptor Encryptor
	decrypter Decrypter
	clock     ffg.Clock
}

var _ ffg.Persister = (*VaultPersister)(nil)

// Option configures a VaultPersister.
type Option func(*VaultPersister)

// WithCompression zstd-compresses snapshots on save.
func WithCompression() Option {
	return func(p *VaultPersister) { p.compress = true }
}

// WithEncryption seals snapshots with enc. dec may be nil, in which case
// saves still work and loads fail with ErrLocked.
func WithEncryption(enc Encryptor, dec Decrypter) Option {
	return func(p *VaultPersister) {
		p.encryptor = enc
		p.decrypter = dec
	}
}

// WithClock sets the clock used to stamp saved_at.
func WithClock(clock ffg.Clock) Option {
	return func(p *VaultPersister) { p.clock = clock }
}

// NewVaultPersister creates a persister writing to slot in v.
func NewVaultPersister(v Vault, slot string, opts ...Option) *VaultPersister {
	p := &VaultPersister{
		vault: v,
		slot:  slot,
		clock: ffg.RealClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Save implements ffg.Persister.
func (p *VaultPersister) Save(ctx context.Context, tree *ffg.Tree) error {
	data, err := Encode(tree, p.clock.Now())
	if err != nil {
		return err
	}

	if p.compress {
		if data, err = Compress(data); err != nil {
			return err
		}
	}

	if p.encryptor != nil {
		var sealed bytes.Buffer
		if err := p.encryptor.Encrypt(bytes.NewReader(data), &sealed); err != nil {
			return fmt.Errorf("encrypting snapshot: %w", err)
		}
		data = sealed.Bytes()
	}

	if err := p.vault.Put(ctx, p.slot, bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("writing snapshot to slot %q: %w", p.slot, err)
	}
	return nil
}

// Load implements ffg.Persister. An empty slot yields ffg.ErrNoSnapshot.
func (p *VaultPersister) Load(ctx context.Context) (*ffg.Tree, error) {
	var buf bytes.Buffer
	if err := p.vault.Get(ctx, p.slot, &buf); err != nil {
		if errors.Is(err, ErrSlotEmpty) {
			return nil, ffg.ErrNoSnapshot
		}
		return nil, fmt.Errorf("reading snapshot from slot %q: %w", p.slot, err)
	}
	data := buf.Bytes()

	if p.encryptor != nil {
		if p.decrypter == nil {
			return nil, ErrLocked
		}
		var plain bytes.Buffer
		if err := p.decrypter.Decrypt(bytes.NewReader(data), &plain); err != nil {
			return nil, fmt.Errorf("decrypting snapshot: %w", err)
		}
		data = plain.Bytes()
	}

	data, err := Decompress(data)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
