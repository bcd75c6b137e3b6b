package netproxy

import (
	"fmt"
	"net"

	"github.com/schevalier/flocker/internal/errkind"
)

// ensureSysctls turns on default interface forwarding and route_localnet on
// every interface, per §6's sysctl contract. Each knob is set independently;
// failures are aggregated rather than aborting on the first one.
func (c *Controller) ensureSysctls() error {
	var failures []error

	if out, err := c.runner.Run("sysctl", "-w", "net.ipv4.conf.default.forwarding=1"); err != nil {
		failures = append(failures, errkind.NewKernelRuleError("enable default forwarding: "+out, err))
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		failures = append(failures, errkind.NewKernelRuleError("enumerate interfaces for route_localnet", err))
	}
	for _, iface := range ifaces {
		key := fmt.Sprintf("net.ipv4.conf.%s.route_localnet=1", iface.Name)
		if out, err := c.runner.Run("sysctl", "-w", key); err != nil {
			failures = append(failures, errkind.NewKernelRuleError("enable route_localnet on "+iface.Name+": "+out, err))
		}
	}

	if len(failures) > 0 {
		return aggregateKernelErrors(failures)
	}
	return nil
}
