// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is wrapped by repositories when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// ErrStaleRecord is wrapped by repositories when a guarded update matched no
// row because the record changed since it was read.
var ErrStaleRecord = errors.New("record changed since it was read")

// Transactor runs a unit of work atomically. Repositories called with the
// context passed to fn participate in the same transaction. Nested calls join
// the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// DocumentRepository defines the secondary port for document persistence.
type DocumentRepository interface {
	// Create persists a new document.
	Create(ctx context.Context, doc *DocumentRecord) error

	// GetByID retrieves a document by its ID.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)

	// List retrieves documents matching the given filters.
	List(ctx context.Context, filters DocumentFilters) ([]*DocumentRecord, error)

	// Update writes status and approval_route_id if the stored version still
	// equals doc.Version, then increments doc.Version.
	Update(ctx context.Context, doc *DocumentRecord) error

	// GetNextID returns the next available document ID.
	GetNextID(ctx context.Context) (string, error)
}

// DocumentRecord represents a document as stored in persistence.
type DocumentRecord struct {
	ID              string
	Title           string
	Description     string // Empty string means null
	Status          string // draft, pending_approval, approved, rejected, cancelled
	ApprovalRouteID string // Empty string means null
	Version         int
	CreatedAt       string
	UpdatedAt       string
}

// DocumentFilters contains filter options for querying documents.
type DocumentFilters struct {
	Status string
	Limit  int
}

// RouteRepository defines the secondary port for route definition persistence.
type RouteRepository interface {
	// Create persists a new route with its steps.
	Create(ctx context.Context, route *RouteRecord) error

	// GetByID retrieves a route and its steps by ID.
	GetByID(ctx context.Context, id string) (*RouteRecord, error)

	// GetByName retrieves a route and its steps by name.
	GetByName(ctx context.Context, name string) (*RouteRecord, error)

	// List retrieves all routes with their steps.
	List(ctx context.Context) ([]*RouteRecord, error)

	// ReplaceSteps swaps the steps of a route and increments its version.
	ReplaceSteps(ctx context.Context, id string, steps []RouteStepRecord) error

	// GetNextID returns the next available route ID.
	GetNextID(ctx context.Context) (string, error)
}

// RouteRecord represents a route definition as stored in persistence.
type RouteRecord struct {
	ID        string
	Name      string
	Version   int
	Steps     []RouteStepRecord // sorted by Order
	CreatedAt string
	UpdatedAt string
}

// RouteStepRecord is one step of a stored route.
type RouteStepRecord struct {
	Order         int
	ApproverIDs   []string // in declaration order
	DeadlineHours int      // 0 means no deadline
}

// ApprovalInstanceRepository defines the secondary port for approval attempts.
type ApprovalInstanceRepository interface {
	// Create persists a new approval instance.
	Create(ctx context.Context, instance *ApprovalInstanceRecord) error

	// GetByID retrieves an approval instance by its ID.
	GetByID(ctx context.Context, id string) (*ApprovalInstanceRecord, error)

	// GetActiveByDocument returns the in-progress instance of a document,
	// or nil if there is none.
	GetActiveByDocument(ctx context.Context, documentID string) (*ApprovalInstanceRecord, error)

	// GetLatestByDocument returns the instance with the highest attempt,
	// or nil if the document was never submitted.
	GetLatestByDocument(ctx context.Context, documentID string) (*ApprovalInstanceRecord, error)

	// ListByDocument returns every attempt of a document, oldest first.
	ListByDocument(ctx context.Context, documentID string) ([]*ApprovalInstanceRecord, error)

	// Update writes status, current_step_order and completed_at.
	Update(ctx context.Context, instance *ApprovalInstanceRecord) error

	// GetNextID returns the next available approval instance ID.
	GetNextID(ctx context.Context) (string, error)
}

// ApprovalInstanceRecord represents one approval attempt as stored in persistence.
type ApprovalInstanceRecord struct {
	ID               string
	DocumentID       string
	RouteID          string
	RouteSnapshot    string // JSON encoded snapshot of the route's steps
	Status           string // in_progress, approved, rejected
	CurrentStepOrder int
	Attempt          int
	StartedAt        time.Time
	CompletedAt      *time.Time
}

// StepInstanceRepository defines the secondary port for per-approver step slots.
type StepInstanceRepository interface {
	// CreateBatch persists the step instances of a new attempt.
	CreateBatch(ctx context.Context, steps []*StepInstanceRecord) error

	// ListByInstance returns the step instances of an attempt ordered by
	// step order, then creation order.
	ListByInstance(ctx context.Context, instanceID string) ([]*StepInstanceRecord, error)

	// RecordDecision sets status, decision_at and comment on a step instance
	// that is still pending. Wraps ErrStaleRecord if it is not.
	RecordDecision(ctx context.Context, step *StepInstanceRecord) error

	// SetDeadline sets deadline_at on every pending step instance at order.
	SetDeadline(ctx context.Context, instanceID string, order int, deadline *time.Time) error

	// ListOverdue returns pending step instances of in-progress attempts
	// whose deadline is before asOf.
	ListOverdue(ctx context.Context, asOf time.Time) ([]*StepInstanceRecord, error)
}

// StepInstanceRecord represents one approver slot as stored in persistence.
type StepInstanceRecord struct {
	ID         string
	InstanceID string
	StepOrder  int
	ApproverID string
	Status     string // pending, approved, rejected, skipped
	DecisionAt *time.Time
	Comment    string // Empty string means null
	DeadlineAt *time.Time
	CarryOver  bool
}

// LogWriter is the secondary port for the audit trail. Implementations
// resolve the actor from context.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error
}

// AuditLogRepository defines the secondary port for audit log persistence.
type AuditLogRepository interface {
	// Create persists a new audit log entry.
	Create(ctx context.Context, log *AuditLogRecord) error

	// List retrieves audit log entries matching the given filters.
	List(ctx context.Context, filters AuditLogFilters) ([]*AuditLogRecord, error)
}

// AuditLogRecord represents an audit log entry as stored in persistence.
type AuditLogRecord struct {
	ID         string
	Timestamp  string
	ActorID    string // Empty string means null
	EntityType string // document, route, approval_instance, step_instance
	EntityID   string
	Action     string // create, update
	FieldName  string // Empty string means null
	OldValue   string // Empty string means null
	NewValue   string // Empty string means null
}

// AuditLogFilters contains filter options for querying audit logs.
type AuditLogFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
}

// RouteDefinitionSource loads route definitions from an external file.
type RouteDefinitionSource interface {
	// Load reads and validates every route definition at path.
	Load(ctx context.Context, path string) ([]RouteDefinition, error)
}

// RouteDefinition is a named route read from an external source.
type RouteDefinition struct {
	Name  string
	Steps []RouteStepRecord
}
