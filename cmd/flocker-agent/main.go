package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-errors/errors"
	"github.com/integrii/flaggy"
	"github.com/sirupsen/logrus"

	"github.com/schevalier/flocker/internal/agent"
	"github.com/schevalier/flocker/internal/config"
	"github.com/schevalier/flocker/internal/errkind"
	"github.com/schevalier/flocker/internal/logging"
	"github.com/schevalier/flocker/internal/model"
	"github.com/schevalier/flocker/internal/netproxy"
	"github.com/schevalier/flocker/internal/runtime"
	"github.com/schevalier/flocker/internal/transport"
	"github.com/schevalier/flocker/internal/volumepool"
)

const defaultVersion = "unversioned"

var (
	version = defaultVersion

	applicationsFile string
	deploymentFile   string
	hostname         string
	namespace        = "flocker"
	volumeBasePath   = "/var/lib/flocker/volumes"
	privateKeyPath   = "/etc/flocker/identity"
	tickInterval     = 30
	debuggingFlag    = false
	logFile          string
)

func main() {
	flaggy.SetName("flocker-agent")
	flaggy.SetDescription("Per-node convergence agent for a declared container deployment")
	flaggy.String(&applicationsFile, "a", "applications", "Path to the applications configuration YAML")
	flaggy.String(&deploymentFile, "d", "deployment", "Path to the deployment YAML")
	flaggy.String(&hostname, "H", "hostname", "This node's hostname as it appears in the deployment file")
	flaggy.String(&namespace, "n", "namespace", "Proxy/kernel-rule namespace tag for this agent")
	flaggy.String(&volumeBasePath, "", "volume-path", "Base directory backing the local volume pool")
	flaggy.String(&privateKeyPath, "k", "identity", "SSH private key used to reach peer nodes")
	flaggy.Int(&tickInterval, "i", "interval", "Seconds between convergence ticks")
	flaggy.Bool(&debuggingFlag, "D", "debug", "Enable debug logging")
	flaggy.String(&logFile, "", "log-file", "Write debug logs here instead of stderr")
	flaggy.SetVersion(version)
	flaggy.Parse()

	if applicationsFile == "" || deploymentFile == "" || hostname == "" {
		log.Fatal("--applications, --deployment and --hostname are required")
	}

	entry := logging.New(logging.Options{
		Debug:     debuggingFlag,
		Namespace: namespace,
		Hostname:  hostname,
		LogFile:   logFile,
	})

	desired, err := loadDeployment(applicationsFile, deploymentFile)
	if err != nil {
		exitOnConfigurationError(err)
	}

	volumes, err := volumepool.NewDirectoryPool(volumeBasePath)
	if err != nil {
		log.Fatal(err.Error())
	}

	a := agent.New(
		hostname,
		namespace,
		privateKeyPath,
		runtime.NewDockerCLIRuntime(),
		volumes,
		netproxy.NewController(namespace),
		transport.NewSSHTransport(),
		entry,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runLoop(ctx, a, desired, entry)
}

// loadDeployment reads and lifts both configuration files into the model;
// any failure here is a ConfigurationError and fatal to startup (spec §7).
func loadDeployment(applicationsPath, deploymentPath string) (model.Deployment, error) {
	appsData, err := os.ReadFile(applicationsPath)
	if err != nil {
		return model.Deployment{}, errkind.NewConfigurationError("", "cannot read applications file: "+err.Error())
	}
	apps, err := config.ParseApplications(appsData)
	if err != nil {
		if pe, ok := err.(*config.ParseError); ok {
			return model.Deployment{}, pe.AsConfigurationError()
		}
		return model.Deployment{}, err
	}

	deploymentData, err := os.ReadFile(deploymentPath)
	if err != nil {
		return model.Deployment{}, errkind.NewConfigurationError("", "cannot read deployment file: "+err.Error())
	}
	deployment, err := config.ParseDeployment(deploymentData, apps)
	if err != nil {
		if pe, ok := err.(*config.ParseError); ok {
			return model.Deployment{}, pe.AsConfigurationError()
		}
		return model.Deployment{}, err
	}
	return deployment, nil
}

// runLoop ticks on a fixed interval; a new tick never starts before the
// previous one's plan has finished or failed (spec §5, Cancellation).
func runLoop(ctx context.Context, a *agent.Agent, desired model.Deployment, entry *logrus.Entry) {
	ticker := time.NewTicker(time.Duration(tickInterval) * time.Second)
	defer ticker.Stop()

	for {
		if err := a.Tick(ctx, desired); err != nil {
			entry.Errorf("tick failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func exitOnConfigurationError(err error) {
	if kindErr, ok := err.(*errkind.Error); ok && kindErr.Kind == errkind.Configuration {
		fmt.Fprintln(os.Stderr, kindErr.Error())
		os.Exit(1)
	}
	newErr := errors.Wrap(err, 0)
	fmt.Fprintln(os.Stderr, newErr.ErrorStack())
	os.Exit(1)
}
