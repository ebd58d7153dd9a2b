// Package signature: llaves RSA y firma RSA-PSS (SHA-256) de los hashes fiscales.
package signature

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// SaltLength longitud de sal PSS en bytes (igual al tamaño del digest SHA-256).
const SaltLength = 32

// SerialBytes bytes aleatorios del número de serie del certificado.
const SerialBytes = 16

// ErrInvalidSignature la firma no corresponde al mensaje o a la llave.
var ErrInvalidSignature = errors.New("signature: firma inválida")

// KeyPair llave RSA exportada: pública SPKI y privada PKCS#8, ambas en base64 estándar.
type KeyPair struct {
	PublicKey  string
	PrivateKey string
	Bits       int
}

// GenerateKeyPair genera una llave RSA (exponente 65537) y la exporta.
func GenerateKeyPair(bits int) (KeyPair, error) {
	if bits < 2048 {
		return KeyPair{}, fmt.Errorf("signature: tamaño de llave %d insuficiente", bits)
	}
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("signature: generar llave: %w", err)
	}
	pub, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("signature: exportar SPKI: %w", err)
	}
	pk8, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return KeyPair{}, fmt.Errorf("signature: exportar PKCS#8: %w", err)
	}
	return KeyPair{
		PublicKey:  base64.StdEncoding.EncodeToString(pub),
		PrivateKey: base64.StdEncoding.EncodeToString(pk8),
		Bits:       bits,
	}, nil
}

// AlgorithmLabel etiqueta almacenada en el certificado, p. ej. "RSA-4096".
func AlgorithmLabel(bits int) string {
	return fmt.Sprintf("RSA-%d", bits)
}

// NewSerial número de serie: 16 bytes aleatorios en hexadecimal (32 caracteres).
func NewSerial() (string, error) {
	b := make([]byte, SerialBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("signature: generar serial: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ParsePrivateKey importa una llave PKCS#8 en base64.
func ParsePrivateKey(b64 string) (*rsa.PrivateKey, error) {
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("signature: llave privada no es base64: %w", err)
	}
	return ParsePrivateKeyDER(der)
}

// ParsePrivateKeyDER importa una llave PKCS#8 en DER.
func ParsePrivateKeyDER(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("signature: importar PKCS#8: %w", err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signature: la llave PKCS#8 no es RSA (%T)", key)
	}
	return priv, nil
}

// ParsePublicKey importa una llave SPKI en base64.
func ParsePublicKey(b64 string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("signature: llave pública no es base64: %w", err)
	}
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("signature: importar SPKI: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("signature: la llave SPKI no es RSA (%T)", key)
	}
	return pub, nil
}

// PSSSigner firma con RSA-PSS, SHA-256 y sal de 32 bytes.
type PSSSigner struct {
	key *rsa.PrivateKey
}

// NewPSSSigner crea el firmante a partir de una llave ya importada.
func NewPSSSigner(key *rsa.PrivateKey) *PSSSigner {
	return &PSSSigner{key: key}
}

// Sign firma el mensaje (los bytes UTF-8 del hash hex) y devuelve la firma en base64.
func (s *PSSSigner) Sign(message []byte) (string, error) {
	digest := sha256.Sum256(message)
	sig, err := rsa.SignPSS(rand.Reader, s.key, crypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: SaltLength,
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return "", fmt.Errorf("signature: firmar PSS: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify comprueba una firma base64 sobre el mensaje con la llave pública SPKI base64.
func Verify(publicKeyB64 string, message []byte, signatureB64 string) error {
	pub, err := ParsePublicKey(publicKeyB64)
	if err != nil {
		return err
	}
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("%w: no es base64", ErrInvalidSignature)
	}
	digest := sha256.Sum256(message)
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], sig, &rsa.PSSOptions{
		SaltLength: SaltLength,
		Hash:       crypto.SHA256,
	}); err != nil {
		return ErrInvalidSignature
	}
	return nil
}
