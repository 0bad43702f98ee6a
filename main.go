/*
Sandbox application driving the Vesper engine: loads vesper.toml, opens a
window and renders whatever models land in the watched assets directory.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/vesper3d/vesper/engine"
	"github.com/vesper3d/vesper/engine/config"
	"github.com/vesper3d/vesper/engine/core"
)

func main() {
	cfg, err := config.Load("vesper.toml")
	if err != nil {
		core.LogFatal("invalid configuration: %v", err)
		os.Exit(1)
	}

	eng, err := engine.New(cfg)
	if err != nil {
		core.LogFatal("engine creation failed: %v", err)
		os.Exit(1)
	}

	if err := eng.Initialize(); err != nil {
		core.LogFatal("engine initialization failed: %v", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		_ = eng.Shutdown()
		os.Exit(0)
	}()

	if err := eng.Run(); err != nil {
		core.LogError("engine stopped: %v", err)
	}

	if err := eng.Shutdown(); err != nil {
		core.LogError("shutdown failed: %v", err)
	}

	stats := eng.Stats()
	core.LogInfo("final frame time %.2fms (%.1f fps)", stats.AvgFrameMS(), stats.FPS())
}
