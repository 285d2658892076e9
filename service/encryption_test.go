package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewEncryptionService("test-secret")
	require.NoError(t, err)

	plaintext := "p@ssw0rd!中文密码"
	encrypted, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, encrypted)

	decrypted, err := svc.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptionService_NonceUnique(t *testing.T) {
	svc, err := NewEncryptionService("test-secret")
	require.NoError(t, err)

	// 同一明文两次加密产出不同密文
	a, err := svc.Encrypt("same")
	require.NoError(t, err)
	b, err := svc.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncryptionService_WrongKey(t *testing.T) {
	alice, err := NewEncryptionService("key-a")
	require.NoError(t, err)
	bob, err := NewEncryptionService("key-b")
	require.NoError(t, err)

	encrypted, err := alice.Encrypt("secret")
	require.NoError(t, err)

	_, err = bob.Decrypt(encrypted)
	assert.Error(t, err)
}

func TestEncryptionService_BadInput(t *testing.T) {
	_, err := NewEncryptionService("")
	assert.Error(t, err)

	svc, err := NewEncryptionService("test-secret")
	require.NoError(t, err)

	_, err = svc.Decrypt("not-base64!!!")
	assert.Error(t, err)

	_, err = svc.Decrypt("c2hvcnQ=") // 合法 base64 但长度不足一个 nonce
	assert.Error(t, err)
}
