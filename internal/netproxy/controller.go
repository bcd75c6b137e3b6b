package netproxy

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mgutz/str"

	"github.com/schevalier/flocker/internal/errkind"
	"github.com/schevalier/flocker/internal/model"
)

// FlockerCommentMarker prefixes every rule comment this package installs, so
// enumeration can tell flocker-owned rules from everything else in the
// kernel's NAT table.
const FlockerCommentMarker = "flocker "

// CommandRunner abstracts process execution so tests can substitute a fake
// rather than exercising the real kernel; NewController's default wires
// os/exec the same way the teacher's OSCommand does.
type CommandRunner interface {
	Run(name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

// Controller is the real iptables-backed ProxyController.
type Controller struct {
	namespace string
	runner    CommandRunner
}

// NewController returns a Controller scoped to namespace, running real
// iptables/sysctl commands.
func NewController(namespace string) *Controller {
	return &Controller{namespace: namespace, runner: execRunner{}}
}

// NewControllerWithRunner is used by tests to substitute a fake CommandRunner.
func NewControllerWithRunner(namespace string, runner CommandRunner) *Controller {
	return &Controller{namespace: namespace, runner: runner}
}

func (c *Controller) Namespace() string { return c.namespace }

func (c *Controller) comment() string { return FlockerCommentMarker + c.namespace }

// CreateProxyTo installs PREROUTING DNAT, POSTROUTING MASQUERADE, and OUTPUT
// DNAT (for loopback-originated traffic) rules, then ensures forwarding and
// route_localnet are enabled, per §4.3/§6.
func (c *Controller) CreateProxyTo(ip string, port int) (model.Proxy, error) {
	destination := fmt.Sprintf("%s:%d", ip, port)
	portStr := strconv.Itoa(port)
	comment := c.comment()

	rules := [][]string{
		{"-t", "nat", "-A", "PREROUTING", "-p", "tcp", "-m", "tcp", "--dport", portStr,
			"-m", "comment", "--comment", comment, "-j", "DNAT", "--to-destination", destination},
		{"-t", "nat", "-A", "POSTROUTING", "-p", "tcp", "-d", ip, "--dport", portStr,
			"-m", "comment", "--comment", comment, "-j", "MASQUERADE"},
		{"-t", "nat", "-A", "OUTPUT", "-p", "tcp", "-o", "lo", "--dport", portStr,
			"-m", "comment", "--comment", comment, "-j", "DNAT", "--to-destination", destination},
	}

	var failures []error
	for _, args := range rules {
		if out, err := c.runner.Run("iptables", args...); err != nil {
			failures = append(failures, errkind.NewKernelRuleError("install proxy rule: "+out, err))
		}
	}
	if err := c.ensureSysctls(); err != nil {
		failures = append(failures, err)
	}
	if len(failures) > 0 {
		return model.Proxy{}, aggregateKernelErrors(failures)
	}

	return model.Proxy{TargetIP: ip, TargetPort: port, Namespace: c.namespace}, nil
}

// DeleteProxy removes the three rules previously installed for proxy,
// matching by destination port and namespace-tagged comment. A missing rule
// is not fatal, matching iptables-equivalent delete semantics.
func (c *Controller) DeleteProxy(p model.Proxy) error {
	destination := fmt.Sprintf("%s:%d", p.TargetIP, p.TargetPort)
	portStr := strconv.Itoa(p.TargetPort)
	comment := FlockerCommentMarker + p.Namespace

	rules := [][]string{
		{"-t", "nat", "-D", "PREROUTING", "-p", "tcp", "-m", "tcp", "--dport", portStr,
			"-m", "comment", "--comment", comment, "-j", "DNAT", "--to-destination", destination},
		{"-t", "nat", "-D", "POSTROUTING", "-p", "tcp", "-d", p.TargetIP, "--dport", portStr,
			"-m", "comment", "--comment", comment, "-j", "MASQUERADE"},
		{"-t", "nat", "-D", "OUTPUT", "-p", "tcp", "-o", "lo", "--dport", portStr,
			"-m", "comment", "--comment", comment, "-j", "DNAT", "--to-destination", destination},
	}

	var failures []error
	for _, args := range rules {
		if out, err := c.runner.Run("iptables", args...); err != nil && !isNoSuchRule(out) {
			failures = append(failures, errkind.NewKernelRuleError("delete proxy rule: "+out, err))
		}
	}
	if len(failures) > 0 {
		return aggregateKernelErrors(failures)
	}
	return nil
}

func isNoSuchRule(output string) bool {
	return strings.Contains(strings.ToLower(output), "no chain/target/match") ||
		strings.Contains(strings.ToLower(output), "does a matching rule exist")
}

// EnumerateProxies parses the kernel's NAT PREROUTING chain, recognizing
// only rules whose comment begins with FlockerCommentMarker, and returns
// only those in this controller's own namespace.
func (c *Controller) EnumerateProxies() ([]model.Proxy, error) {
	all, err := c.enumerateAllNamespaces()
	if err != nil {
		return nil, err
	}
	out := make([]model.Proxy, 0, len(all))
	for _, p := range all {
		if p.Namespace == c.namespace {
			out = append(out, p)
		}
	}
	return out, nil
}

// enumerateAllNamespaces returns every flocker-owned proxy regardless of
// namespace; used internally by EnumerateUsedPorts (used ports are global).
func (c *Controller) enumerateAllNamespaces() ([]model.Proxy, error) {
	out, err := c.runner.Run("iptables", "-t", "nat", "-S", "PREROUTING")
	if err != nil {
		return nil, errkind.NewKernelRuleError("list PREROUTING rules", err)
	}

	var proxies []model.Proxy
	for _, line := range strings.Split(out, "\n") {
		proxy, ok := parsePreroutingLine(line)
		if ok {
			proxies = append(proxies, proxy)
		}
	}
	return proxies, nil
}

func parsePreroutingLine(line string) (model.Proxy, bool) {
	tokens := str.ToArgv(line)
	var port int
	var destIP string
	var comment string
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "--dport":
			if i+1 < len(tokens) {
				if n, err := strconv.Atoi(tokens[i+1]); err == nil {
					port = n
				}
			}
		case "--to-destination":
			if i+1 < len(tokens) {
				destIP, _, _ = strings.Cut(tokens[i+1], ":")
			}
		case "--comment":
			if i+1 < len(tokens) {
				comment = tokens[i+1]
			}
		}
	}
	if !strings.HasPrefix(comment, FlockerCommentMarker) || port == 0 || destIP == "" {
		return model.Proxy{}, false
	}
	namespace := strings.TrimPrefix(comment, FlockerCommentMarker)
	return model.Proxy{TargetIP: destIP, TargetPort: port, Namespace: namespace}, true
}

// EnumerateUsedPorts is the union of local listening/established TCP
// endpoints and every proxy's port, across all namespaces.
func (c *Controller) EnumerateUsedPorts() (map[int]bool, error) {
	used := make(map[int]bool)

	local, err := c.listeningAndEstablishedPorts()
	if err != nil {
		return nil, err
	}
	for _, p := range local {
		used[p] = true
	}

	proxies, err := c.enumerateAllNamespaces()
	if err != nil {
		return nil, err
	}
	for _, p := range proxies {
		used[p.TargetPort] = true
	}

	return used, nil
}

func (c *Controller) listeningAndEstablishedPorts() ([]int, error) {
	out, err := c.runner.Run("ss", "-tHn", "state", "listening", "state", "established")
	if err != nil {
		return nil, errkind.NewTransientIO("enumerate local tcp endpoints", err)
	}
	var ports []int
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		localAddr := fields[3]
		idx := strings.LastIndex(localAddr, ":")
		if idx < 0 {
			continue
		}
		if port, err := strconv.Atoi(localAddr[idx+1:]); err == nil {
			ports = append(ports, port)
		}
	}
	return ports, nil
}

func aggregateKernelErrors(failures []error) error {
	if len(failures) == 1 {
		return failures[0]
	}
	msgs := make([]string, len(failures))
	for i, f := range failures {
		msgs[i] = f.Error()
	}
	return errkind.NewKernelRuleError(fmt.Sprintf("%d rule mutations failed: %s", len(failures), strings.Join(msgs, "; ")), failures[0])
}
