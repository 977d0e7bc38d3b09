package cattle

import "errors"

var (
	ErrFieldsRequired      = errors.New("Name, breed and age are required")
	ErrInvalidAge          = errors.New("Age must be between 0 and 40")
	ErrInvalidGender       = errors.New("Gender must be Male or Female")
	ErrInvalidHealthStatus = errors.New("Invalid health status")
	ErrTagTaken            = errors.New("An animal with this tag already exists")
	ErrCattleNotFound      = errors.New("Cattle not found")
	ErrInvalidViewType     = errors.New("view_type must be last_7, all_time or custom")
	ErrInvalidDateRange    = errors.New("Invalid date range")
	ErrHealthIssueRequired = errors.New("Issue is required")
)
