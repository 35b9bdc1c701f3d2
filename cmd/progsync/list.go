package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/smarttorque/progsync/internal/store"
	"github.com/smarttorque/progsync/internal/ui"
)

const dateLayout = "2006-01-02 15:04"

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported programs",
	RunE: func(cmd *cobra.Command, args []string) error {
		workcell, _ := cmd.Flags().GetString("workcell")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		programs, err := db.ListHeaders(ctx, store.ListOptions{Workcell: workcell, Limit: limit})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(programs)
		}

		if len(programs) == 0 {
			fmt.Printf("%s No programs imported yet\n", ui.RenderWarn("⚠"))
			return nil
		}

		rows := make([][]string, 0, len(programs))
		for _, p := range programs {
			rows = append(rows, []string{
				p.Model,
				p.Workcell,
				strconv.Itoa(p.DetailCount),
				formatTime(p.FileDate),
				formatTime(p.ExtractedAt),
			})
		}
		fmt.Println(ui.Table([]string{"Model", "Workcell", "Details", "File date", "Imported"}, rows))
		fmt.Printf("%d programs\n", len(programs))
		return nil
	},
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func init() {
	f := listCmd.Flags()
	f.String("workcell", "", "only programs in this workcell")
	f.Int("limit", 0, "maximum number of programs (0 = all)")
	f.Bool("json", false, "output JSON")

	rootCmd.AddCommand(listCmd)
}
