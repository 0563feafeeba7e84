package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/digitalbox/go-digitalbox-server/util"
	"github.com/spf13/cobra"
)

var outputFile string

func init() {
	keysCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default is stdout)")
	rootCmd.AddCommand(keysCmd)
}

// keysCmd generates a symmetric key in the same format the server uses for
// complaint encryption at rest
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate a symmetric encryption key",
	Long:  "Generate a 256 bit symmetric key, base64 url encoded, for complaint encryption at rest",
	Run: func(cmd *cobra.Command, args []string) {
		key, err := util.GenerateSymmetricKey()
		if err != nil {
			panic(err)
		}
		keysJson := map[string]interface{}{
			"type":    "digitalbox_symmetric_key_aes256",
			"key":     key,
			"created": time.Now().UnixMilli(),
		}
		fileBytes, err := json.MarshalIndent(keysJson, "", "  ")
		if outputFile != "" {
			// save keys to disk in a file
			// fail if file already exists
			if _, err := os.Stat(outputFile); !errors.Is(err, os.ErrNotExist) {
				fmt.Printf("File already exists: %s\n", outputFile)
				os.Exit(1)
			}
			check(err)
			err = os.WriteFile(outputFile, fileBytes, 0644)
			check(err)
			fmt.Printf("Output file: %s\n", outputFile)
		} else {
			fmt.Printf("\n%s\n", string(fileBytes))
		}
	},
}
