package report

import "io"

// Encryptor protects the serialized queue at rest. Queued reports carry
// personally identifying details of missing persons, so the file-backed
// store can encrypt the whole document before it touches disk.
type Encryptor interface {
	// Setup performs one-time key generation. Called during `config init`.
	Setup() error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Decrypt decrypts data read from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error

	// IsConfigured returns true if the key material exists.
	IsConfigured() bool
}
