package statemachine

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// machineInfoKey is the key used to store the sending machine in Go context.
const machineInfoKey contextKey = "statemachine_machine"

// MachineInfo identifies the machine handling the current Send. It is available to
// loggers and effect handlers through the context passed to Send.
type MachineInfo struct {
	Machine string
	State   string
}

func withMachineInfo(ctx context.Context, info MachineInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, machineInfoKey, info)
}

// MachineInfoFrom returns the machine info stored by Send, if any.
func MachineInfoFrom(ctx context.Context) (MachineInfo, bool) {
	if ctx == nil {
		return MachineInfo{}, false
	}

	info, ok := ctx.Value(machineInfoKey).(MachineInfo)

	return info, ok
}
