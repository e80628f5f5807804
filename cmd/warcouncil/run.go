package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/athola/warcouncil/internal/presentation/tui"
	"github.com/athola/warcouncil/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <problem statement>",
	Short: "Deliberate a problem statement and print the decision",
	Long: `Convenes the council over the given problem statement. Lightweight mode
seats the core panel and escalates to full council when the stakes warrant
it; --mode full_council seats everyone from the start; --delphi runs the
iterative refinement variant (always full council).`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app, err := wireApp(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		modeFlag, _ := cmd.Flags().GetString("mode")
		delphi, _ := cmd.Flags().GetBool("delphi")
		mode := domain.Mode(modeFlag)
		if mode != domain.ModeLightweight && mode != domain.ModeFullCouncil {
			fmt.Printf("Error: unknown mode %q (expected %q or %q)\n",
				modeFlag, domain.ModeLightweight, domain.ModeFullCouncil)
			os.Exit(1)
		}

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		if interactive {
			tui.PrintBanner(Version)
		}

		problem := strings.Join(args, " ")
		var session *domain.Session
		if delphi {
			session, err = app.executor.RunDelphi(cmd.Context(), problem)
		} else {
			session, err = app.executor.Run(cmd.Context(), problem, mode)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			if session != nil {
				fmt.Printf("Partial session persisted as %s\n", session.ID)
			}
			os.Exit(1)
		}

		fmt.Printf("Session %s (%s)\n", session.ID, session.Mode)
		if session.Escalated {
			fmt.Printf("Escalated to full council: %s\n", session.EscalationReason)
		}
		if notices := session.Artifacts[domain.ArtifactFallbackNotices]; notices != "" {
			fmt.Println(notices)
		}

		decision := session.Artifacts[domain.ArtifactDecision]
		if decision == "" {
			return
		}
		if interactive {
			render := tui.NewRenderer()
			if out, rerr := render(decision); rerr == nil {
				fmt.Print(out)
				return
			}
		}
		fmt.Println(decision)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("mode", string(domain.ModeLightweight), "Council mode: 'lightweight' or 'full_council'")
	runCmd.Flags().Bool("delphi", false, "Run iterative Delphi refinement until convergence")
}
