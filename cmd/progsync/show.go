package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smarttorque/progsync/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show MODEL",
	Short: "Show an imported program and its details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		h, err := db.GetProgram(ctx, args[0])
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(h)
		}

		fmt.Printf("\n%s %s\n", ui.RenderAccent("📋"), ui.RenderBold(h.Model))
		fmt.Printf("   Workcell:  %s\n", h.Workcell)
		fmt.Printf("   File:      %s\n", h.FilePath)
		fmt.Printf("   File date: %s\n", formatTime(h.FileDate))
		fmt.Printf("   Imported:  %s\n", formatTime(h.ExtractedAt))
		fmt.Printf("   ID:        %s\n\n", ui.RenderMuted(h.ID.String()))

		rows := make([][]string, 0, len(h.Details))
		for _, d := range h.Details {
			rows = append(rows, []string{
				strconv.Itoa(d.RowNumber),
				d.TargetTorque.StringFixed(2) + " " + string(d.TorqueUnit),
				d.MinAngle.StringFixed(2),
				d.MaxAngle.StringFixed(2),
				strconv.Itoa(d.ScrewCount),
				strconv.Itoa(d.SpeedRPM),
			})
		}
		fmt.Println(ui.Table([]string{"Row", "Target torque", "Min angle (°)", "Max angle (°)", "Screws", "Speed (RPM)"}, rows))
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "output JSON")
	rootCmd.AddCommand(showCmd)
}
