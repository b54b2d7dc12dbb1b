package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/ports"
)

// sealedPrefix marks a Source value that was encrypted by this middleware.
const sealedPrefix = "sealed:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are old keys tried when the active key fails,
	// so keys can be rotated without dropping live sessions.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SessionStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the node-list
// source of every session with AES-GCM before it reaches the store.
// Subscription links usually embed an access token.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes (AES-256)", i)
		}
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

// ParseKey decodes a standard base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("session key is not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, userID string, session *domain.SelectionSession) error {
	sealed := session.Snapshot()
	if sealed.Source != "" {
		ciphertext, err := encrypt([]byte(sealed.Source), m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt session source: %w", err)
		}
		sealed.Source = sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext)
	}
	return m.next.Save(ctx, userID, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context, userID string) (*domain.SelectionSession, error) {
	session, err := m.next.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Source == "" {
		return session, nil
	}

	encoded, ok := strings.CutPrefix(session.Source, sealedPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: session source is not sealed", domain.ErrCorruptSession)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode ciphertext base64: %w", domain.ErrCorruptSession, err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decrypt session source: %w", domain.ErrCorruptSession, err)
	}
	session.Source = string(plain)
	return session, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, userID string) error {
	return m.next.Delete(ctx, userID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	for _, key := range append([][]byte{activeKey}, fallbackKeys...) {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
