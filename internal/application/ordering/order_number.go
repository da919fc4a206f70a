package ordering

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxOrderNumberAttempts reintentos si el store reporta número duplicado.
const maxOrderNumberAttempts = 5

// NumberGenerator genera números de orden legibles.
type NumberGenerator func(now time.Time) string

// NewOrderNumber devuelve ORD-YYYYMMDD-XXXXXXXXXXXX: fecha UTC + 48 bits aleatorios de un UUIDv4
// (los últimos 6 bytes, que no llevan bits de versión ni variante).
// La constraint única del store es la garantía final.
func NewOrderNumber(now time.Time) string {
	id := uuid.New()
	return "ORD-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(id[10:]))
}
