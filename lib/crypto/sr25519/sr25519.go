// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package sr25519

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/collator/lib/common"
	"github.com/ChainSafe/collator/lib/crypto"
	"github.com/ChainSafe/go-schnorrkel"
	"github.com/gtank/merlin"
)

const (
	// PublicKeyLength is the expected public key length for sr25519.
	PublicKeyLength = 32
	// SeedLength is the expected seed length for sr25519.
	SeedLength = 32
	// SignatureLength is the expected signature length for sr25519.
	SignatureLength = 64
)

// SigningContext is the context for signatures used or created with substrate
var SigningContext = []byte("substrate")

var (
	ErrSeedLength      = errors.New("seed is not 32 bytes long")
	ErrPublicKeyLength = errors.New("public key is not 32 bytes long")
	ErrSignatureLength = errors.New("signature is not 64 bytes long")
)

// Keypair is a sr25519 public-private keypair
type Keypair struct {
	public  *PublicKey
	private *PrivateKey
}

// PublicKey holds reference to a sr25519.PublicKey
type PublicKey struct {
	key *schnorrkel.PublicKey
}

// PrivateKey holds the mini secret seed and its expanded secret key.
type PrivateKey struct {
	seed [SeedLength]byte
	key  *schnorrkel.SecretKey
}

var (
	_ crypto.Keypair    = (*Keypair)(nil)
	_ crypto.PublicKey  = (*PublicKey)(nil)
	_ crypto.PrivateKey = (*PrivateKey)(nil)
)

func newPrivateKey(seed [SeedLength]byte) (*PrivateKey, error) {
	msc, err := schnorrkel.NewMiniSecretKeyFromRaw(seed)
	if err != nil {
		return nil, fmt.Errorf("creating mini secret key: %w", err)
	}
	return &PrivateKey{
		seed: seed,
		key:  msc.ExpandEd25519(),
	}, nil
}

// NewKeypairFromSeed returns a new Keypair given a 32 byte seed
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedLength {
		return nil, fmt.Errorf("cannot generate key from seed: %w", ErrSeedLength)
	}

	var buf [SeedLength]byte
	copy(buf[:], seed)
	priv, err := newPrivateKey(buf)
	if err != nil {
		return nil, err
	}

	pub, err := priv.publicKey()
	if err != nil {
		return nil, err
	}

	return &Keypair{public: pub, private: priv}, nil
}

// NewKeypairFromMnenomic returns a new Keypair using the given mnemonic and password.
func NewKeypairFromMnenomic(mnemonic, password string) (*Keypair, error) {
	msc, err := schnorrkel.MiniSecretKeyFromMnemonic(mnemonic, password)
	if err != nil {
		return nil, fmt.Errorf("deriving mini secret from mnemonic: %w", err)
	}
	seed := msc.Encode()
	return NewKeypairFromSeed(seed[:])
}

// GenerateKeypair returns a new sr25519 keypair
func GenerateKeypair() (*Keypair, error) {
	msc, err := schnorrkel.GenerateMiniSecretKey()
	if err != nil {
		return nil, fmt.Errorf("generating mini secret key: %w", err)
	}
	seed := msc.Encode()
	return NewKeypairFromSeed(seed[:])
}

// Type returns Sr25519Type
func (*Keypair) Type() crypto.KeyType {
	return crypto.Sr25519Type
}

// Sign uses the keypair to sign the message using the sr25519 signature algorithm
func (kp *Keypair) Sign(msg []byte) ([]byte, error) {
	return kp.private.Sign(msg)
}

// Public returns the public key corresponding to this keypair
func (kp *Keypair) Public() crypto.PublicKey {
	return kp.public
}

// Private returns the private key corresponding to this keypair
func (kp *Keypair) Private() crypto.PrivateKey {
	return kp.private
}

// NewSigningTranscript returns the substrate signing transcript of msg.
func NewSigningTranscript(msg []byte) *merlin.Transcript {
	return schnorrkel.NewSigningContext(SigningContext, msg)
}

// Sign uses the private key to sign the message using the sr25519 signature algorithm
func (k *PrivateKey) Sign(msg []byte) ([]byte, error) {
	return k.SignTranscript(NewSigningTranscript(msg))
}

// SignTranscript signs the transcript. The transcript is consumed.
func (k *PrivateKey) SignTranscript(t *merlin.Transcript) ([]byte, error) {
	if k.key == nil {
		return nil, errors.New("key is nil")
	}
	sig, err := k.key.Sign(t)
	if err != nil {
		return nil, err
	}
	enc := sig.Encode()
	return enc[:], nil
}

func (k *PrivateKey) publicKey() (*PublicKey, error) {
	if k.key == nil {
		return nil, errors.New("key is nil")
	}
	pub, err := k.key.Public()
	if err != nil {
		return nil, err
	}
	return &PublicKey{key: pub}, nil
}

// Public returns the public key corresponding to this private key
func (k *PrivateKey) Public() (crypto.PublicKey, error) {
	return k.publicKey()
}

// Encode returns the 32 byte seed of the private key
func (k *PrivateKey) Encode() []byte {
	seed := k.seed
	return seed[:]
}

// Decode decodes the input bytes into a private key and sets the receiver the decoded key
// Input must be 32 bytes, or else this function will error
func (k *PrivateKey) Decode(in []byte) error {
	if len(in) != SeedLength {
		return ErrSeedLength
	}
	var seed [SeedLength]byte
	copy(seed[:], in)
	priv, err := newPrivateKey(seed)
	if err != nil {
		return err
	}
	*k = *priv
	return nil
}

// Hex returns the private key as a '0x' prefixed hex string
func (k *PrivateKey) Hex() string {
	return common.BytesToHex(k.Encode())
}

// NewPublicKey returns a sr25519 public key from 32 byte input
func NewPublicKey(in []byte) (*PublicKey, error) {
	pub := new(PublicKey)
	err := pub.Decode(in)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

// Verify uses the sr25519 signature algorithm to verify that the message was signed by
// this public key; it returns true if this key created the signature for the message,
// false otherwise
func (k *PublicKey) Verify(msg, sig []byte) (bool, error) {
	return k.VerifyTranscript(sig, NewSigningTranscript(msg))
}

// VerifyTranscript verifies sig against the transcript. The transcript is consumed.
func (k *PublicKey) VerifyTranscript(sig []byte, t *merlin.Transcript) (bool, error) {
	if len(sig) != SignatureLength {
		return false, ErrSignatureLength
	}

	var b [SignatureLength]byte
	copy(b[:], sig)

	s := &schnorrkel.Signature{}
	err := s.Decode(b)
	if err != nil {
		return false, err
	}

	return k.key.Verify(s, t)
}

// Encode returns the 32 byte encoding of the public key
func (k *PublicKey) Encode() []byte {
	if k.key == nil {
		return nil
	}

	enc := k.key.Encode()
	return enc[:]
}

// Decode decodes the input bytes into a public key and sets the receiver the decoded key
// Input must be 32 bytes, or else this function will error
func (k *PublicKey) Decode(in []byte) error {
	if len(in) != PublicKeyLength {
		return ErrPublicKeyLength
	}
	var b [PublicKeyLength]byte
	copy(b[:], in)
	k.key = &schnorrkel.PublicKey{}
	return k.key.Decode(b)
}

// Address will return PublicKey Address
func (k *PublicKey) Address() string {
	return crypto.PublicKeyToAddress(k)
}

// Hex will return PublicKey Hex
func (k *PublicKey) Hex() string {
	return common.BytesToHex(k.Encode())
}

// AsBytes returns the public key as a fixed size array
func (k *PublicKey) AsBytes() (b [PublicKeyLength]byte) {
	copy(b[:], k.Encode())
	return b
}
