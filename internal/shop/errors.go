package shop

import "errors"

// Location permission values.
const (
	PermissionPrompt  = "prompt"
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

// DefaultListName is used when a list is created lazily on first add.
const DefaultListName = "Shopping List"

// Error variables for state operations. Validation failures are rejected
// synchronously at the command boundary with local state untouched.
var (
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrItemNotFound     = errors.New("item not found")
	ErrListNotFound     = errors.New("list not found")
	ErrStoreNotFound    = errors.New("store not found")
	ErrNoActiveList     = errors.New("no active list")
	ErrReorderMismatch  = errors.New("reorder must cover exactly the pending items")
	ErrCodeGeneration   = errors.New("no unique share code after repeated attempts")
	ErrConfigFileRead   = errors.New("cannot read config file")
	ErrConfigInvalid    = errors.New("invalid config file")
	ErrStateFileRead    = errors.New("cannot read state file")
	ErrStateFileInvalid = errors.New("invalid state file")
	ErrLockTimeout      = errors.New("state lock timeout")
)
