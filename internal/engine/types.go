package engine

import "time"

// MemoryKind classifies a Memory's epistemic role.
type MemoryKind string

const (
	KindFact       MemoryKind = "fact"
	KindEpisodic   MemoryKind = "episodic"
	KindProcedural MemoryKind = "procedural"
	KindSemantic   MemoryKind = "semantic"
)

// Memory is an atom of knowledge with bi-temporal validity.
type Memory struct {
	ID         uint64
	Content    string
	Kind       MemoryKind
	AgentID    string
	UserID     string
	SessionID  string
	Confidence float32
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ValidFrom  time.Time
	ValidUntil *time.Time
	Source     string
	Tags       []string
	Metadata   string
}

// IsValid reports whether the memory is valid as of now (ValidUntil absent
// or in the future).
func (m Memory) IsValid(now time.Time) bool {
	return m.ValidUntil == nil || m.ValidUntil.After(now)
}

// Operation tags a MemoryHistory audit record.
type Operation string

const (
	OpAdd        Operation = "add"
	OpUpdate     Operation = "update"
	OpInvalidate Operation = "invalidate"
	OpMerge      Operation = "merge"
)

// MemoryHistory is an append-only audit record for a single memory mutation.
type MemoryHistory struct {
	ID         uint64
	MemoryID   uint64
	Operation  Operation
	OldContent string
	NewContent string
	Reason     string
	ChangedBy  string
	Timestamp  time.Time
}

// Entity is a node in the knowledge graph. Name is not unique.
type Entity struct {
	ID         uint64
	Name       string
	EntityType string
	Description string
	AgentID    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Metadata   string
}

// Relationship is a directed, typed edge between two entities.
type Relationship struct {
	ID             uint64
	SourceEntityID uint64
	TargetEntityID uint64
	RelationType   string
	Description    string
	Weight         float32
	ValidFrom      time.Time
	ValidUntil     *time.Time
	CreatedBy      string
	Metadata       string
}

// ChannelType classifies a Channel's visibility/routing intent.
type ChannelType string

const (
	ChannelPublic    ChannelType = "public"
	ChannelPrivate   ChannelType = "private"
	ChannelBroadcast ChannelType = "broadcast"
	ChannelAgent     ChannelType = "agent"
	ChannelUser      ChannelType = "user"
)

// Channel is a named pub/sub topic persisted in the Store (distinct from
// the live bus subscription, which is in-process only).
type Channel struct {
	ID          uint64
	Name        string
	Description string
	ChannelType ChannelType
	CreatedBy   string
	CreatedAt   time.Time
}

// ChannelMembership links a memory to a channel it was shared into.
type ChannelMembership struct {
	ID       uint64
	ChannelID uint64
	MemoryID  uint64
	SharedBy  string
	SharedAt  time.Time
}

// AgentStatus is an agent's last-reported liveness state.
type AgentStatus string

const (
	AgentOnline  AgentStatus = "online"
	AgentOffline AgentStatus = "offline"
	AgentBusy    AgentStatus = "busy"
)

// Agent is a registered fleet member.
type Agent struct {
	AgentID      string
	Name         string
	AgentType    string
	Capabilities []string
	Status       AgentStatus
	LastSeen     time.Time
	MemoryCount  int64
	Metadata     string
}

// TaskStatus is a Task's position in its state machine.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskClaimed    TaskStatus = "claimed"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Task is a lightweight extension kind for coordinating work across agents.
type Task struct {
	ID                   uint64
	Title                string
	Description          string
	Status               TaskStatus
	Priority             int
	RequiredCapabilities []string
	AssignedAgent        string
	CreatedBy            string
	Dependencies         []uint64
	Result               string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Deadline             *time.Time
	Metadata             string
}

// TaskEventType tags a TaskEvent.
type TaskEventType string

const (
	TaskEventCreated    TaskEventType = "created"
	TaskEventClaimed    TaskEventType = "claimed"
	TaskEventStarted    TaskEventType = "started"
	TaskEventProgress   TaskEventType = "progress"
	TaskEventCompleted  TaskEventType = "completed"
	TaskEventFailed     TaskEventType = "failed"
	TaskEventCancelled  TaskEventType = "cancelled"
	TaskEventReassigned TaskEventType = "reassigned"
)

// TaskEvent is an append-only audit record for a Task transition.
type TaskEvent struct {
	ID        uint64
	TaskID    uint64
	EventType TaskEventType
	AgentID   string
	Details   string
	Timestamp time.Time
}

// ListFilter narrows List/Search candidate sets.
type ListFilter struct {
	AgentID            string
	UserID             string
	Tags               []string // List: all-must-match. Search: any-match.
	IncludeInvalidated bool
	Limit              int
}

// UpdatePatch carries the mutable subset of Memory fields. Nil fields are
// left unchanged.
type UpdatePatch struct {
	Content    *string
	Tags       []string
	Confidence *float32
	Metadata   *string
}

// ExtractionVerdict is the conflict-resolution decision the Extractor
// capability hands back for a single extracted fact.
type ExtractionVerdict string

const (
	VerdictAdd    ExtractionVerdict = "add"
	VerdictUpdate ExtractionVerdict = "update"
	VerdictNoop   ExtractionVerdict = "noop"
)
