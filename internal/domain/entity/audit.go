package entity

import "time"

// Acciones registradas en la bitácora.
const (
	AuditCreateUser    = "CREATE_USER"
	AuditUpdateUser    = "UPDATE_USER"
	AuditDeleteUser    = "DELETE_USER"
	AuditResetPassword = "RESET_PASSWORD"
	AuditCreateSector  = "CREATE_SECTOR"
	AuditUpdateSector  = "UPDATE_SECTOR"
	AuditDeleteSector  = "DELETE_SECTOR"
	AuditCreateEvent   = "CREATE_EVENT"
	AuditUpdateEvent   = "UPDATE_EVENT"
	AuditChangeStatus  = "CHANGE_EVENT_STATUS"
	AuditDeleteEvent   = "DELETE_EVENT"
	AuditLogin         = "LOGIN"
)

// AuditEntry registro inmutable de una acción relevante.
type AuditEntry struct {
	ID        int64
	ActorID   *int64
	Action    string
	Entity    string
	EntityID  *int64
	Detail    string
	CreatedAt time.Time
}
