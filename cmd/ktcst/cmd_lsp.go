package main

import (
	"github.com/dhamidi/ktcst/kotlin/codebase"
	"github.com/spf13/cobra"
)

func newLSPCmd() *cobra.Command {
	var tcp string
	var websocket string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the language server, on stdio unless an address is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := codebase.NewLSPServer(version)
			switch {
			case tcp != "":
				return server.RunTCP(tcp)
			case websocket != "":
				return server.RunWebSocket(websocket)
			}
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVar(&tcp, "tcp", "", "listen on this TCP address")
	cmd.Flags().StringVar(&websocket, "websocket", "", "listen for web socket connections on this address")
	cmd.MarkFlagsMutuallyExclusive("tcp", "websocket")

	return cmd
}
