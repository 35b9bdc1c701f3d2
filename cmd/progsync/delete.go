package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smarttorque/progsync/internal/store"
	"github.com/smarttorque/progsync/internal/ui"
)

var deleteCmd = &cobra.Command{
	Use:   "delete MODEL",
	Short: "Delete an imported program and its details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model := args[0]
		yes, _ := cmd.Flags().GetBool("yes")

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		h, err := db.GetProgram(ctx, model)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Printf("%s No program stored for %s\n", ui.RenderWarn("⚠"), model)
			return nil
		}
		if err != nil {
			return err
		}

		if !yes {
			if !ui.IsTerminal(os.Stdin) {
				return fmt.Errorf("refusing to delete %s without --yes when not interactive", h.Model)
			}
			ok, err := ui.Confirm(
				fmt.Sprintf("Delete program %s?", h.Model),
				fmt.Sprintf("%d details from %s will be removed.", len(h.Details), h.FilePath),
			)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Cancelled")
				return nil
			}
		}

		// A re-import may have replaced the program while the prompt was open.
		id, err := db.FindHeaderID(ctx, h.Model)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Printf("%s %s was removed meanwhile\n", ui.RenderWarn("⚠"), h.Model)
			return nil
		}
		if err != nil {
			return err
		}
		if id != h.ID {
			return fmt.Errorf("program %s was re-imported while confirming; run delete again", h.Model)
		}

		if _, err := db.DeleteProgram(ctx, h.Model); err != nil {
			return err
		}
		fmt.Printf("%s Deleted %s (%d details)\n", ui.RenderPass("✓"), h.Model, len(h.Details))
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
