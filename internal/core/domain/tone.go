package domain

// Tone is the semantic color a label is rendered with.
type Tone string

const (
	ToneDefault   Tone = "default"
	TonePrimary   Tone = "primary"
	ToneSecondary Tone = "secondary"
	ToneInfo      Tone = "info"
	ToneSuccess   Tone = "success"
	ToneWarning   Tone = "warning"
	ToneError     Tone = "error"
)

func (s TaskStatus) Tone() Tone {
	switch s {
	case TaskDone:
		return ToneSuccess
	case TaskInProgress:
		return ToneWarning
	default:
		return ToneDefault
	}
}

func (p Priority) Tone() Tone {
	switch p {
	case PriorityHigh:
		return ToneError
	case PriorityMedium:
		return ToneWarning
	default:
		return ToneDefault
	}
}

func (r Role) Tone() Tone {
	switch r {
	case RoleAdmin:
		return ToneError
	case RoleManager:
		return ToneWarning
	case RoleDesigner:
		return ToneSecondary
	case RoleTester:
		return ToneInfo
	default:
		return TonePrimary
	}
}

func (s ProjectStatus) Tone() Tone {
	if s == ProjectActive {
		return ToneSuccess
	}
	return ToneDefault
}
