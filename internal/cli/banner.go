package cli

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

func (a *app) bannerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "banner",
		Short: "Print the application banner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(a.out, a.cfg.GetAppName())
			return nil
		},
	}
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	figure.Write(w, myFigure)
	fmt.Fprintln(w)
}
