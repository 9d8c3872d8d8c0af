package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"supplyscope/internal/decode"
)

// runDecode decodes a raw account blob offline, for inspecting chain state
// dumps without a running oracle.
func runDecode(cmd *cobra.Command, _ []string) error {
	schema, _ := cmd.Flags().GetString("schema")
	inPath, _ := cmd.Flags().GetString("in")
	b64, _ := cmd.Flags().GetString("base64")

	var data []byte
	switch {
	case inPath != "" && b64 != "":
		return fmt.Errorf("use either --in or --base64, not both")
	case inPath != "":
		var err error
		data, err = os.ReadFile(inPath)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	case b64 != "":
		var err error
		data, err = base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return fmt.Errorf("decode base64: %w", err)
		}
	default:
		return fmt.Errorf("either --in or --base64 is required")
	}

	var record interface{}
	switch schema {
	case "fee-config":
		cfg, err := decode.DecodeFeeConfig(data)
		if err != nil {
			return err
		}
		if cfg == nil {
			fmt.Println("account not initialized")
			return nil
		}
		record = cfg
	case "validator":
		v, err := decode.DecodeValidator(data)
		if err != nil {
			return err
		}
		record = v
	default:
		return fmt.Errorf("unknown schema %q (use fee-config or validator)", schema)
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
