// Command hostagent is the foreign-side bridge endpoint: the shim's
// launcher starts one of these per plugin instance (spec.md §4.5 step 1),
// connected over MainContext (inherited stdin/stdout) and RealtimeContext
// (two inherited file descriptors named positionally on the command
// line, spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/pluginbridge/bridge/config"
	"github.com/pluginbridge/bridge/hostagent"
	"github.com/pluginbridge/bridge/launcher"
	"github.com/pluginbridge/bridge/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "hostagent: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args, err := config.ParseHostAgentArgs(os.Args[1:])
	if err != nil {
		return err
	}

	logger, logFile, err := logging.Open(os.Getenv("BRIDGE_LOG_DIR"), "hostagent")
	if err != nil {
		return err
	}
	defer logFile.Close()

	override, err := config.LoadOverride(os.Getenv("BRIDGE_OVERRIDE_FILE"))
	if err != nil {
		return err
	}

	plugin, err := hostagent.UnimplementedLoader(args.PluginPath)
	if err != nil {
		logger.Error("plugin load failed", "path", args.PluginPath, "error", err)
		return err
	}

	rtRead := os.NewFile(uintptr(args.RTReadFD), "rt-read")
	rtWrite := os.NewFile(uintptr(args.RTWriteFD), "rt-write")
	rtConn := newFilePairConn(rtRead, rtWrite)
	mainConn := newFilePairConn(os.Stdin, os.Stdout)

	scheduler := launcher.RTScheduler(launcher.NoopRTScheduler{})
	if override.SchedPolicy != "" {
		if err := scheduler.Apply(override.SchedPolicy, override.SchedPriority); err != nil {
			logger.Warn("initial scheduling hint rejected", "error", err)
		}
	}

	agent, err := hostagent.New(mainConn, rtConn, plugin, scheduler, logger)
	if err != nil {
		logger.Error("agent handshake failed", "error", err)
		return err
	}

	logger.Info("host agent ready", "plugin", args.PluginPath)
	return agent.Run()
}

// filePairConn adapts two distinct *os.File handles (one read-only, one
// write-only) into a single io.ReadWriteCloser, the shape hostagent.New
// expects per channel.
type filePairConn struct {
	r *os.File
	w *os.File
}

func newFilePairConn(r, w *os.File) *filePairConn { return &filePairConn{r: r, w: w} }

func (c *filePairConn) Read(b []byte) (int, error)  { return c.r.Read(b) }
func (c *filePairConn) Write(b []byte) (int, error) { return c.w.Write(b) }
func (c *filePairConn) Close() error {
	err1 := c.r.Close()
	err2 := c.w.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
