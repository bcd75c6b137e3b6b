package model

// NodeState is the result of observing what is currently running on a node:
// the running applications, the stopped-but-present applications, and the
// host-side ports currently in use (by any proxy, any namespace).
type NodeState struct {
	Running    []Application
	NotRunning []Application
	UsedPorts  []int
}

// AllApplications is the union of Running and NotRunning, compared by name.
func (s NodeState) AllApplications() []Application {
	return append(append([]Application{}, s.Running...), s.NotRunning...)
}
