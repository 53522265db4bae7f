package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/corey/acmatch/internal/adapters/socket"
	"github.com/corey/acmatch/internal/app"
)

var watchCmd = &cobra.Command{
	Use:   "watch <name> <file>",
	Short: "Compile a pattern file and recompile it on every change",
	Long: "Compiles file into name, then watches it and recompiles after each change.\n" +
		"A file that fails to compile leaves the previous set in service. Runs until\n" +
		"interrupted or until `acmatch stop`.\n\n" +
		"The database stays open while watching. `acmatch match <name>` is answered by\n" +
		"the watcher over a Unix socket; other commands wait until watch exits.",
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running watcher",
	Args:  cobra.NoArgs,
	RunE:  runStop,
}

func init() {
	addBuildFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	pidFile := a.Paths.PIDFile
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidFile)

	live := &app.Live{}
	srv := socket.NewServer(app.LiveBackend{Name: name, Live: live}, socket.SocketPath(a.Root))
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		select {
		case <-srv.ShutdownCh():
			cancel()
		case <-ctx.Done():
		}
	}()

	out := cmd.OutOrStdout()
	p := painter(resolveColor(out, colorFlag, noColor))
	onReload := func(res *app.CompileResult, err error) {
		if err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", p.paint(colorRed, "✗"), name, err)
			return
		}
		fmt.Fprint(out, formatCompile(p, res))
	}
	return a.Watch(ctx, name, args[1], live, onReload)
}

func runStop(cmd *cobra.Command, args []string) error {
	root, err := projectRoot()
	if err != nil {
		return err
	}
	client := socket.NewClient(socket.SocketPath(root))
	if !client.Ping() {
		fmt.Fprintln(cmd.OutOrStdout(), "no watcher running")
		return nil
	}
	if err := client.Shutdown(); err != nil {
		return fmt.Errorf("stop watcher: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "watcher stopped")
	return nil
}
