// Package keyvault cifra en reposo las llaves privadas de los certificados (AES-256-GCM).
//
// Cada laboratorio usa una llave derivada de la llave maestra con HKDF-SHA256 y su ID
// va como dato asociado: un sobre copiado a otro laboratorio no se puede abrir.
package keyvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// envelopePrefix versión del formato del sobre: "v1:" + base64(nonce || ciphertext).
const envelopePrefix = "v1:"

const hkdfInfo = "dentalcloud/certificate-key/"

var (
	// ErrInvalidMasterKey la llave maestra no mide 32 bytes.
	ErrInvalidMasterKey = errors.New("keyvault: la llave maestra debe tener 32 bytes")
	// ErrMalformedEnvelope el sobre no tiene el formato esperado.
	ErrMalformedEnvelope = errors.New("keyvault: sobre mal formado")
)

// Vault sella y abre llaves privadas.
type Vault struct {
	master []byte
}

// New crea el vault con una llave maestra de 32 bytes.
func New(masterKey []byte) (*Vault, error) {
	if len(masterKey) != 32 {
		return nil, ErrInvalidMasterKey
	}
	m := make([]byte, len(masterKey))
	copy(m, masterKey)
	return &Vault{master: m}, nil
}

// Seal cifra el material de llave del laboratorio y devuelve el sobre en texto.
func (v *Vault) Seal(laboratoryID string, plaintext []byte) (string, error) {
	gcm, err := v.aead(laboratoryID)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("keyvault: generar nonce: %w", err)
	}
	out := gcm.Seal(nonce, nonce, plaintext, []byte(laboratoryID))
	return envelopePrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open descifra un sobre producido por Seal para el mismo laboratorio.
func (v *Vault) Open(laboratoryID, envelope string) ([]byte, error) {
	if !strings.HasPrefix(envelope, envelopePrefix) {
		return nil, ErrMalformedEnvelope
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(envelope, envelopePrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	gcm, err := v.aead(laboratoryID)
	if err != nil {
		return nil, err
	}
	if len(raw) < gcm.NonceSize() {
		return nil, ErrMalformedEnvelope
	}
	nonce, ct := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ct, []byte(laboratoryID))
	if err != nil {
		return nil, fmt.Errorf("keyvault: descifrar: %w", err)
	}
	return plain, nil
}

func (v *Vault) aead(laboratoryID string) (cipher.AEAD, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, v.master, nil, []byte(hkdfInfo+laboratoryID)), key); err != nil {
		return nil, fmt.Errorf("keyvault: derivar llave: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("keyvault: crear cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keyvault: crear GCM: %w", err)
	}
	return gcm, nil
}
