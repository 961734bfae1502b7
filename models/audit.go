package models

import "time"

// Типы операций, попадающие в журнал аудита.
type AuditOperation string

const (
	AuditOperationCreate AuditOperation = "create"
	AuditOperationUpdate AuditOperation = "update"
	AuditOperationDelete AuditOperation = "delete"
)

// AuditRecord - запись аудита, отправляемая во внешний сервис.
// Локально не хранится и обратно не читается: это телеметрия,
// а не источник истины.
type AuditRecord struct {
	EventType        string         `json:"event_type"`
	ServiceOrigin    string         `json:"service_origin"`
	EntityType       string         `json:"entity_type"`
	EntityID         string         `json:"entity_id"`
	OperationType    AuditOperation `json:"operation_type"`
	CampusCode       string         `json:"campus_code"`
	UserRegistration string         `json:"user_registration"`
	RequestMetadata  map[string]any `json:"request_metadata,omitempty"`
	OldData          any            `json:"old_data,omitempty"`
	NewData          any            `json:"new_data,omitempty"`
	Timestamp        time.Time      `json:"timestamp"`
}
