package main

import (
	"io"
	"os"
	"strconv"

	"github.com/cooldogedev/prism/network"
	"github.com/cooldogedev/prism/palette"
	proto "github.com/cooldogedev/prism/protocol"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func versionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the supported protocol versions",
		Run: func(cmd *cobra.Command, _ []string) {
			renderVersions(cmd.OutOrStdout())
		},
	}
}

func renderVersions(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Version", "Protocol", "Palette", "Packets", "Compression prefix"})
	tw.SetAutoWrapText(false)

	anchor := palette.DefaultAnchors[0]
	anchors := palette.DefaultAnchors
	for _, v := range proto.SupportedVersions {
		for len(anchors) > 0 && anchors[0] <= v {
			anchor, anchors = anchors[0], anchors[1:]
		}
		pool := "legacy"
		if v >= network.Cutoff {
			pool = "current"
		}
		prefix := "no"
		if v.Has(proto.FeatureCompressionPrefix) {
			prefix = "yes"
		}
		tw.Append([]string{v.String(), strconv.Itoa(int(v)), anchor.String(), pool, prefix})
	}
	tw.Render()
}
