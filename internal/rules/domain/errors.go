package domain

import "errors"

// Exported error variables allow callers to use errors.Is() for error checking.
var (
	// Operation error kinds. All are terminal for the operation that raised
	// them; none are retried automatically.
	ErrInvalidTarget    = errors.New("target is not a usable directory")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrDuplicateName    = errors.New("profile name already exists")
	ErrCorruptStore     = errors.New("profile store is corrupt")
	ErrBackupFailed     = errors.New("backup failed")
	ErrClearFailed      = errors.New("clearing configuration files failed")
	ErrWriteFailed      = errors.New("writing configuration files failed")
	ErrSwitchInProgress = errors.New("a switch is already in progress for this directory")

	// Profile name validation.
	ErrNameEmpty        = errors.New("profile name cannot be empty")
	ErrNameDot          = errors.New("profile name cannot be '.' or '..'")
	ErrNameNonPrintable = errors.New("profile name contains non-printable characters")
	ErrNameInvalidChars = errors.New("profile name contains invalid characters (<>:\"/|?*)")
	ErrNameReserved     = errors.New("profile name is a reserved system filename")
	ErrNameNullByte     = errors.New("profile name contains null byte")
	ErrUnknownTool      = errors.New("unknown AI tool identifier")

	// Profile file-key validation.
	ErrPathAbsolute     = errors.New("profile file path must be relative")
	ErrPathEscapesRoot  = errors.New("profile file path escapes the target directory")
	ErrPathReservedName = errors.New("profile file path collides with a reserved file")
)
