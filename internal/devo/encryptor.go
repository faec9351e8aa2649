package devo

import "io"

// Encryptor encrypts backup snapshots with an asymmetric key pair so that
// backups can be taken without entering a passphrase. Decryption requires
// unlocking the private key first.
type Encryptor interface {
	// Setup generates and stores a new key pair, protecting the private key
	// with the given passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key with the passphrase and returns a
	// context that can decrypt data.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether a key pair exists.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key.
type DecryptionContext interface {
	// Decrypt reads ciphertext from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
