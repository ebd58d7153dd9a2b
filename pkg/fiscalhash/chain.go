package fiscalhash

import (
	"strconv"
	"strings"
	"time"
)

// ChainTimeLayout precisión de microsegundos, la misma que guarda timestamptz.
const ChainTimeLayout = "2006-01-02T15:04:05.000000Z"

// ChainLink entrada del registro de auditoría. PreviousHash vacío marca la primera
// entrada del laboratorio.
type ChainLink struct {
	LaboratoryID string
	Sequence     int64
	EntityType   string
	EntityID     string
	Operation    string
	Details      string
	UserID       string
	CreatedAt    time.Time
	PreviousHash string
}

// ChainCanonical:
//
//	v1|audit|<laboratorio>|<secuencia>|<entidad>|<id>|<operación>|<detalle>|<usuario>|<fecha UTC>|<hash previo>
func ChainCanonical(l ChainLink) string {
	clean := func(s string) string { return strings.ReplaceAll(s, "|", "") }
	return strings.Join([]string{
		Version, "audit",
		clean(l.LaboratoryID),
		strconv.FormatInt(l.Sequence, 10),
		clean(l.EntityType),
		clean(l.EntityID),
		clean(l.Operation),
		clean(l.Details),
		clean(l.UserID),
		l.CreatedAt.UTC().Truncate(time.Microsecond).Format(ChainTimeLayout),
		clean(l.PreviousHash),
	}, "|")
}

// ChainHash SHA-256 hex de ChainCanonical.
func ChainHash(l ChainLink) string {
	return digest(ChainCanonical(l))
}
