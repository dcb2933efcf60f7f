package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"iviweb/internal/app"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4d9375"))

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().Int("width", 0, "screen width (default from settings)")
	renderCmd.Flags().Int("height", 0, "screen height (default from settings)")
	renderCmd.Flags().Int("scroll", 0, "scroll offset in lines")
	renderCmd.Flags().Bool("header", false, "print the source above the frame")
	renderCmd.Flags().Bool("dial-in", false, "print the terminal sizing helper instead of a page")
}

var renderCmd = &cobra.Command{
	Use:   "render [source]",
	Short: "Render one frame of a page to stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settings
		if v, _ := cmd.Flags().GetInt("width"); v > 0 {
			s.ScreenWidth = v
		}
		if v, _ := cmd.Flags().GetInt("height"); v > 0 {
			s.ScreenHeight = v
		}
		a, err := app.New(s, false)
		if err != nil {
			return err
		}
		opts := a.ScreenOptions()
		opts.Scroll, _ = cmd.Flags().GetInt("scroll")

		src := s.StartPage
		if len(args) == 1 {
			src = args[0]
		}
		if src == "" {
			src = "about:start"
		}
		scene, err := a.Loader.LoadScene(context.Background(), src, opts)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if dial, _ := cmd.Flags().GetBool("dial-in"); dial {
			fmt.Fprintln(out, scene.DialInString())
			return nil
		}
		if header, _ := cmd.Flags().GetBool("header"); header {
			fmt.Fprintln(out, headerStyle.Render(src))
		}
		fmt.Fprintln(out, scene.Render())
		return nil
	},
}
