package domain

// RequestStatus represents the lifecycle state of a request
type RequestStatus int

const (
	StatusDraft RequestStatus = iota + 1
	StatusPendingApproval
	StatusApproved
	StatusRejected
)

// String returns the display name of the status
func (s RequestStatus) String() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPendingApproval:
		return "Pending Approval"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the status accepts no further transitions
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether the value is a known status
func (s RequestStatus) Valid() bool {
	return s >= StatusDraft && s <= StatusRejected
}

// RequestType represents the category of a request
type RequestType int

const (
	TypeHardware RequestType = iota + 1
	TypeSoftware
	TypeAccess
	TypePurchase
	TypeOther
)

// String returns the display name of the request type
func (t RequestType) String() string {
	switch t {
	case TypeHardware:
		return "Hardware"
	case TypeSoftware:
		return "Software"
	case TypeAccess:
		return "Access"
	case TypePurchase:
		return "Purchase"
	case TypeOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// Valid reports whether the value is a known request type
func (t RequestType) Valid() bool {
	return t >= TypeHardware && t <= TypeOther
}

// Priority represents the urgency of a request
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns the display name of the priority
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// Valid reports whether the value is a known priority
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

// CreateAction distinguishes the "save" and "submit" choices on the create form
type CreateAction string

const (
	ActionSave   CreateAction = "save"
	ActionSubmit CreateAction = "submit"
)

// InitialStatus returns the status a newly created request starts in
func (a CreateAction) InitialStatus() RequestStatus {
	if a == ActionSubmit {
		return StatusPendingApproval
	}
	return StatusDraft
}
