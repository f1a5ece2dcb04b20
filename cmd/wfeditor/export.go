package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wfeditor/internal/dag"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the serialized payload of a workflow seed",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt("workflow")
		loader, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		wf := loader.Config().Workflow(id)
		if wf == nil {
			return fmt.Errorf("workflow %d not found", id)
		}
		t, err := dag.Build(wf)
		if err != nil {
			return err
		}
		p, err := dag.Serialize(t)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

func init() {
	exportCmd.Flags().Int("workflow", 0, "Workflow ID to export")
	_ = exportCmd.MarkFlagRequired("workflow")
	rootCmd.AddCommand(exportCmd)
}
