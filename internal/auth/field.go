package auth

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// FieldCipher seals short strings (PAN, account numbers) with fernet.
// A nil *FieldCipher stores values in the clear.
type FieldCipher struct {
	key *fernet.Key
}

// NewFieldCipher decodes a base64 fernet key. An empty key disables sealing.
func NewFieldCipher(encodedKey string) (*FieldCipher, error) {
	if encodedKey == "" {
		return nil, nil
	}
	k, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode FIELD_KEY: %w", err)
	}
	return &FieldCipher{key: k}, nil
}

// GenerateFieldKey returns a fresh encoded key.
func GenerateFieldKey() (string, error) {
	var k fernet.Key
	if err := k.Generate(); err != nil {
		return "", err
	}
	return k.Encode(), nil
}

func (c *FieldCipher) Seal(plain string) (string, error) {
	if c == nil || plain == "" {
		return plain, nil
	}
	tok, err := fernet.EncryptAndSign([]byte(plain), c.key)
	if err != nil {
		return "", err
	}
	return string(tok), nil
}

func (c *FieldCipher) Open(sealed string) (string, error) {
	if c == nil || sealed == "" {
		return sealed, nil
	}
	msg := fernet.VerifyAndDecrypt([]byte(sealed), 0, []*fernet.Key{c.key})
	if msg == nil {
		return "", errors.New("sealed field failed verification")
	}
	return string(msg), nil
}
