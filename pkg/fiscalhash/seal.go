package fiscalhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SealInput datos que fijan el cierre de un periodo fiscal. Hashes son las huellas
// de facturas y avoirs del periodo, en el orden en que se sellan.
type SealInput struct {
	LaboratoryID string
	PeriodType   string
	Start        time.Time
	End          time.Time
	Hashes       []string
}

// SealCanonical construye la cadena del sello:
//
//	v1|seal|<laboratorio>|<tipo>|<inicio>|<fin>|<n>|<hash 1>|...|<hash n>
func SealCanonical(s SealInput) (string, error) {
	if s.LaboratoryID == "" || s.PeriodType == "" || s.Start.IsZero() || s.End.IsZero() {
		return "", ErrInvalidDocument
	}
	parts := make([]string, 0, 7+len(s.Hashes))
	parts = append(parts,
		Version, "seal", s.LaboratoryID, s.PeriodType,
		s.Start.Format("2006-01-02"), s.End.Format("2006-01-02"),
		strconv.Itoa(len(s.Hashes)),
	)
	for _, h := range s.Hashes {
		if !isHexDigest(h) {
			return "", ErrInvalidDocument
		}
		parts = append(parts, strings.ToLower(h))
	}
	return strings.Join(parts, "|"), nil
}

// SealHash SHA-256 hex de SealCanonical.
func SealHash(s SealInput) (string, error) {
	c, err := SealCanonical(s)
	if err != nil {
		return "", err
	}
	return digest(c), nil
}

func digest(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
