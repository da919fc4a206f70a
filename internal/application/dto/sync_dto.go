package dto

// SyncReport resultado de una corrida de sincronización con el catálogo externo.
// Cuenta lo sincronizado, no lo reconciliado: los productos borrados en el origen no se archivan.
type SyncReport struct {
	Fetched   int      `json:"fetched"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Failed    int      `json:"failed"`
	Pages     int      `json:"pages"`
	Truncated bool     `json:"truncated"`
	Errors    []string `json:"errors,omitempty"`
	Message   string   `json:"message"`
}

// Synced total de registros creados o actualizados.
func (r SyncReport) Synced() int {
	return r.Created + r.Updated
}
