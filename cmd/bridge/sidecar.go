package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docbridge/bridge/internal/config"
	"github.com/docbridge/bridge/internal/enhance"
)

var sidecarCmd = &cobra.Command{
	Use:   "sidecar",
	Short: "Manage the enhancement sidecar container",
	Long: `Manage the image enhancement sidecar container lifecycle.

The sidecar serves the enhancement HTTP API (deblur, binarize, unwatermark)
and bind-mounts the scratch directory so images are exchanged by path.

Examples:
  bridge sidecar start    # Start the sidecar container
  bridge sidecar stop     # Stop the container
  bridge sidecar status   # Check container status
  bridge sidecar remove   # Remove the container`,
}

// sidecarManager builds a Docker manager from the current config.
func sidecarManager() (*enhance.DockerManager, error) {
	cfgMgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	c := cfgMgr.Get()

	return enhance.NewDockerManager(enhance.DockerConfig{
		ContainerName: c.Enhance.Sidecar.ContainerName,
		Image:         c.Enhance.Sidecar.Image,
		ScratchPath:   c.ScratchDir,
		HostPort:      c.Enhance.Sidecar.HostPort,
	})
}

var sidecarStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the enhancement sidecar container",
	Long: `Start the enhancement sidecar container.

If the container doesn't exist, it will be created and started.
If it exists but is stopped, it will be started.
If it's already running, this is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := sidecarManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Starting enhancement sidecar...")
		if err := mgr.Start(cmd.Context()); err != nil {
			return fmt.Errorf("failed to start sidecar: %w", err)
		}

		fmt.Printf("Sidecar is running at %s\n", mgr.URL())
		return nil
	},
}

var sidecarStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the enhancement sidecar container",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := sidecarManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Stopping enhancement sidecar...")
		if err := mgr.Stop(cmd.Context()); err != nil {
			return fmt.Errorf("failed to stop sidecar: %w", err)
		}

		fmt.Println("Sidecar stopped")
		return nil
	},
}

var sidecarStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show enhancement sidecar container status",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := sidecarManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		status, err := mgr.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		switch status {
		case enhance.StatusRunning:
			fmt.Printf("Status: %s\n", status)
			fmt.Printf("URL: %s\n", mgr.URL())
		case enhance.StatusStopped:
			fmt.Printf("Status: %s (use 'bridge sidecar start' to start)\n", status)
		case enhance.StatusNotFound:
			fmt.Printf("Status: %s (use 'bridge sidecar start' to create)\n", status)
		default:
			fmt.Printf("Status: %s\n", status)
		}

		return nil
	},
}

var sidecarRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the enhancement sidecar container",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := sidecarManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Removing sidecar container...")
		if err := mgr.Remove(cmd.Context()); err != nil {
			return fmt.Errorf("failed to remove container: %w", err)
		}

		fmt.Println("Sidecar container removed")
		return nil
	},
}

func init() {
	sidecarCmd.AddCommand(sidecarStartCmd)
	sidecarCmd.AddCommand(sidecarStopCmd)
	sidecarCmd.AddCommand(sidecarStatusCmd)
	sidecarCmd.AddCommand(sidecarRemoveCmd)
	rootCmd.AddCommand(sidecarCmd)
}
