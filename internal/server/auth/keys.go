package auth

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// LoadPrivateKey parses a PEM-encoded RSA key given inline or, when pem is
// empty, read from path. Both empty yields (nil, nil): the caller decides
// whether a missing key is fatal.
func LoadPrivateKey(pem, path string) (*rsa.PrivateKey, error) {
	data := []byte(pem)
	if pem == "" {
		if path == "" {
			return nil, nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading key file: %v", common.ErrConfiguration, err)
		}
		data = b
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing RSA key: %v", common.ErrConfiguration, err)
	}
	return key, nil
}
