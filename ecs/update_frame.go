package ecs

// UpdateFrame is handed to every system during one scheduler step. Registry
// is iterating for the whole frame, so structural changes must be queued on
// Commands; they are flushed after all systems ran.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Registry  *Registry
}

func newUpdateFrame(dt float64, registry *Registry, commands *Commands) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Commands:  commands,
		Registry:  registry,
	}
}
