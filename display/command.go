package display

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ShouldOutputJSON determines if a command should output JSON: an explicit
// --json flag wins, then the root's persistent --json, then CLUTZ_JSON.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return envJSON()
	}

	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return envJSON()
}

func envJSON() bool {
	switch os.Getenv("CLUTZ_JSON") {
	case "1", "true", "yes":
		return true
	}
	return false
}

// OutputJSON marshals and prints JSON using display.MarshalJSON
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
