package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func check(e error) {
	if e != nil {
		fmt.Printf("%v\n", e.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "digitalbox",
	Short:   "Digitalbox is an encrypted complaint management and chat service",
	Long:    `Digitalbox is an encrypted complaint management and chat service. Complaints are stored encrypted at rest while support staff and requesters talk over a real-time chat.`,
	Version: "0.1.0",
	Run: func(cmd *cobra.Command, args []string) {
		// empty
	},
}

func main() {
	Execute()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
