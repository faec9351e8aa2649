package testutil

import (
	"holyverses/internal/devo"
	"holyverses/internal/encryption"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() devo.Encryptor {
	return encryption.NewTestEncryptor()
}
