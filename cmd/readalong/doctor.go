package main

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/readalong/internal/bus"
	"github.com/leonardotrapani/readalong/internal/config"
	"github.com/leonardotrapani/readalong/internal/deps"
	"github.com/leonardotrapani/readalong/internal/recording"
	"github.com/leonardotrapani/readalong/internal/tui"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, audio and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			report := func(ok bool, name, detail string) {
				mark := tui.StyleSuccess.Render("ok")
				if !ok {
					mark = tui.StyleError.Render("!!")
					failed++
				}
				fmt.Printf("  [%s] %-14s %s\n", mark, name, tui.StyleMuted.Render(detail))
			}

			fmt.Println(tui.StyleHeader.Render("readalong doctor"))

			for _, st := range deps.All() {
				switch {
				case st.Installed:
					report(true, st.Name, st.Path+" "+st.Version)
				case st.Required:
					report(false, st.Name, "not found (required)")
				default:
					fmt.Printf("  [--] %-14s %s\n", st.Name, tui.StyleMuted.Render("not found (optional)"))
				}
			}

			if err := recording.CheckPipeWireAvailable(cmd.Context()); err != nil {
				report(false, "pipewire", err.Error())
			} else {
				report(true, "pipewire", "running")
			}

			if cfg, err := config.LoadOrDefault(); err != nil {
				report(false, "config", err.Error())
			} else if err := cfg.Validate(); err != nil {
				report(false, "config", err.Error())
			} else {
				path, _ := config.GetConfigPath()
				report(true, "config", path)
			}

			if resp, err := bus.SendCommand(bus.CmdVersion, ""); err != nil {
				fmt.Printf("  [--] %-14s %s\n", "daemon", tui.StyleMuted.Render("not running"))
			} else {
				report(true, "daemon", strings.TrimSpace(resp))
			}

			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}
